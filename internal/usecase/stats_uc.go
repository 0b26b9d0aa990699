package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// moodWindow bounds the feedback breakdown so ancient ratings stop skewing
// the dashboard.
const moodWindow = 30 * 24 * time.Hour

// StatsSummary is the admin dashboard snapshot. It marshals to JSON both for
// the API response and for the redis cache in front of this use case.
type StatsSummary struct {
	Users         int         `json:"users"`
	VisitsTotal   int         `json:"visits_total"`
	VisitsToday   int         `json:"visits_today"`
	PointsEarned  int64       `json:"points_earned"`
	PointsSpent   int64       `json:"points_spent"`
	Redemptions   int         `json:"redemptions"`
	MoodBreakdown map[int]int `json:"mood_breakdown"`
	GeneratedAt   time.Time   `json:"generated_at"`
}

type StatsUseCase interface {
	Totals(ctx context.Context) (*StatsSummary, error)
}

type statsUC struct {
	users       repository.UserRepository
	visits      repository.VisitRepository
	ledger      repository.PointsLedgerRepository
	redemptions repository.RedemptionRepository
	feedback    repository.FeedbackRepository

	log *zerolog.Logger
}

func NewStatsUseCase(
	users repository.UserRepository,
	visits repository.VisitRepository,
	ledger repository.PointsLedgerRepository,
	redemptions repository.RedemptionRepository,
	feedback repository.FeedbackRepository,
	logger *zerolog.Logger,
) *statsUC {
	return &statsUC{
		users:       users,
		visits:      visits,
		ledger:      ledger,
		redemptions: redemptions,
		feedback:    feedback,
		log:         logger,
	}
}

func (s *statsUC) Totals(ctx context.Context) (*StatsSummary, error) {
	users, err := s.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	visitsTotal, err := s.visits.CountVisits(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	visitsToday, err := s.visits.CountVisitsSince(ctx, repository.NoTX, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	earned, err := s.ledger.SumAmountByKind(ctx, repository.NoTX, model.PointsKindEarn)
	if err != nil {
		return nil, err
	}
	spent, err := s.ledger.SumAmountByKind(ctx, repository.NoTX, model.PointsKindSpend)
	if err != nil {
		return nil, err
	}
	redemptions, err := s.redemptions.CountRedemptions(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	moods, err := s.feedback.MoodCounts(ctx, repository.NoTX, time.Now().Add(-moodWindow))
	if err != nil {
		return nil, err
	}

	return &StatsSummary{
		Users:         users,
		VisitsTotal:   visitsTotal,
		VisitsToday:   visitsToday,
		PointsEarned:  earned,
		PointsSpent:   spent,
		Redemptions:   redemptions,
		MoodBreakdown: moods,
		GeneratedAt:   time.Now(),
	}, nil
}
