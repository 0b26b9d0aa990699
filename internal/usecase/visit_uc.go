package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/adapter"
	"nightapp-server/internal/domain/ports/repository"
	"nightapp-server/internal/infra/logging"
	"nightapp-server/internal/infra/metrics"
)

// Compile-time check
var _ VisitUseCase = (*visitUC)(nil)

type VisitUseCase interface {
	// AcceptVisit records a venue visit for the member who owns the scanned
	// code and credits that activity's points to them, all inside a single
	// transaction. Only admins may call it. The code itself is left
	// untouched and stays redeemable until it expires or is revoked.
	AcceptVisit(ctx context.Context, caller model.Principal, code, activityName string) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Visit, error)
}

type visitUC struct {
	activities repository.ActivityRepository
	codes      repository.QRCodeRepository
	visits     repository.VisitRepository
	ledger     LedgerUseCase
	tm         repository.TransactionManager
	events     adapter.EventPublisher
	log        *zerolog.Logger
}

func NewVisitUseCase(
	activities repository.ActivityRepository,
	codes repository.QRCodeRepository,
	visits repository.VisitRepository,
	ledger LedgerUseCase,
	tm repository.TransactionManager,
	events adapter.EventPublisher,
	logger *zerolog.Logger,
) *visitUC {
	return &visitUC{
		activities: activities,
		codes:      codes,
		visits:     visits,
		ledger:     ledger,
		tm:         tm,
		events:     events,
		log:        logger,
	}
}

func (u *visitUC) AcceptVisit(ctx context.Context, caller model.Principal, code, activityName string) error {
	defer logging.TraceDuration(u.log, "VisitUC.AcceptVisit")()
	start := time.Now()

	if !caller.IsAdmin() {
		metrics.IncVisitAccepted("unauthorized")
		u.log.Warn().Str("caller_id", caller.UserID).Msg("visit acceptance denied")
		return domain.ErrUnauthorized
	}

	var (
		visit    *model.Visit
		activity *model.Activity
		ownerID  string
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := u.activities.FindActiveByName(ctx, tx, activityName)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidActivity
			}
			return err
		}

		qr, err := u.codes.FindActiveByCode(ctx, tx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidOrExpiredCode
			}
			return err
		}

		v, err := model.NewVisit(qr.UserID)
		if err != nil {
			return err
		}
		if err := u.visits.Save(ctx, tx, v); err != nil {
			return err
		}

		meta := map[string]interface{}{
			"code":          code,
			"visit_id":      v.ID,
			"activity_name": a.Name,
			"activity_id":   a.ID,
		}
		// The ledger write rides the same transaction; if it fails, the
		// visit row rolls back with it.
		if _, err := u.ledger.Record(ctx, tx, qr.UserID, a.Points, model.PointsKindEarn, "Points earned from "+a.Name, meta); err != nil {
			return err
		}

		visit, activity, ownerID = v, a, qr.UserID
		return nil
	})
	if err != nil {
		metrics.IncVisitAccepted(acceptOutcome(err))
		u.log.Error().Err(err).
			Str("code", code).
			Str("activity", activityName).
			Msg("visit acceptance failed")
		return err
	}

	metrics.IncVisitAccepted("accepted")
	metrics.ObserveVisitAcceptLatency(time.Since(start).Milliseconds())
	u.log.Info().
		Str("visit_id", visit.ID).
		Str("user_id", ownerID).
		Str("activity", activity.Name).
		Int64("points", activity.Points).
		Msg("visit accepted")

	// Fan-out happens after commit; a broker problem cannot undo the visit.
	_ = u.events.PublishVisitAccepted(ctx, adapter.VisitAcceptedEvent{
		VisitID:      visit.ID,
		UserID:       ownerID,
		ActivityID:   activity.ID,
		ActivityName: activity.Name,
		Points:       activity.Points,
		Code:         code,
		AcceptedAt:   visit.CreatedAt,
	})
	return nil
}

func acceptOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidActivity):
		return "invalid_activity"
	case errors.Is(err, domain.ErrInvalidOrExpiredCode):
		return "invalid_code"
	default:
		return "error"
	}
}

func (u *visitUC) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Visit, error) {
	defer logging.TraceDuration(u.log, "VisitUC.ListByUser")()
	return u.visits.ListByUser(ctx, repository.NoTX, userID, offset, limit)
}
