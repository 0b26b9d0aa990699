package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
	"nightapp-server/internal/infra/logging"
	"nightapp-server/internal/infra/metrics"
)

// Compile-time check
var _ QRCodeUseCase = (*qrCodeUC)(nil)

type QRCodeUseCase interface {
	// Issue mints a fresh code for the member, valid for the configured TTL.
	Issue(ctx context.Context, userID string) (*model.QRCode, error)
	Revoke(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, activeOnly bool) ([]*model.QRCode, error)
	// ExpireOutstanding deactivates every code whose expiry has passed and
	// returns how many were swept. The sweep is housekeeping for listings;
	// acceptance checks expiry on its own and never waits for it.
	ExpireOutstanding(ctx context.Context) (int64, error)
}

type qrCodeUC struct {
	codes repository.QRCodeRepository
	users repository.UserRepository
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewQRCodeUseCase(codes repository.QRCodeRepository, users repository.UserRepository, ttl time.Duration, logger *zerolog.Logger) *qrCodeUC {
	return &qrCodeUC{codes: codes, users: users, ttl: ttl, log: logger}
}

// codeAlphabet leaves out 0/O and 1/I so codes survive being read out loud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateCode() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", buf[0:4], buf[4:8], buf[8:12]), nil
}

func (u *qrCodeUC) Issue(ctx context.Context, userID string) (*model.QRCode, error) {
	defer logging.TraceDuration(u.log, "QRCodeUC.Issue")()

	if _, err := u.users.FindByID(ctx, repository.NoTX, userID); err != nil {
		return nil, err
	}

	// Collisions on the unique code column are vanishingly rare; retry a
	// couple of times instead of locking anything.
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}
		qr, err := model.NewQRCode("", userID, code, u.ttl)
		if err != nil {
			return nil, err
		}
		if err := u.codes.Save(ctx, repository.NoTX, qr); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				lastErr = err
				continue
			}
			return nil, err
		}
		metrics.IncCodeIssued()
		u.log.Info().Str("user_id", userID).Time("expires_at", qr.ExpiresAt).Msg("qr code issued")
		return qr, nil
	}
	return nil, lastErr
}

func (u *qrCodeUC) Revoke(ctx context.Context, id string) error {
	defer logging.TraceDuration(u.log, "QRCodeUC.Revoke")()

	qr, err := u.codes.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if !qr.IsActive {
		return nil
	}
	qr.IsActive = false
	if err := u.codes.Save(ctx, repository.NoTX, qr); err != nil {
		return err
	}
	u.log.Info().Str("code_id", id).Msg("qr code revoked")
	return nil
}

func (u *qrCodeUC) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]*model.QRCode, error) {
	defer logging.TraceDuration(u.log, "QRCodeUC.ListByUser")()
	return u.codes.ListByUser(ctx, repository.NoTX, userID, activeOnly)
}

func (u *qrCodeUC) ExpireOutstanding(ctx context.Context) (int64, error) {
	defer logging.TraceDuration(u.log, "QRCodeUC.ExpireOutstanding")()

	n, err := u.codes.DeactivateExpired(ctx, repository.NoTX, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddCodesExpired(n)
		u.log.Info().Int64("count", n).Msg("expired qr codes swept")
	}
	return n, nil
}
