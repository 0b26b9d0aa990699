package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Visit acceptance errors
	ErrUnauthorized         = errors.New("caller is not an admin")
	ErrInvalidActivity      = errors.New("activity is unknown or inactive")
	ErrInvalidOrExpiredCode = errors.New("qr code is unknown, inactive or expired")

	// Points and reward errors
	ErrInsufficientPoints   = errors.New("insufficient points balance")
	ErrRewardUnavailable    = errors.New("reward is unknown or inactive")
	ErrRedemptionInProgress = errors.New("another redemption is in progress for this user")

	// Infrastructure errors
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
