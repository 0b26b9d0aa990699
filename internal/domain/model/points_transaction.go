package model

import (
	"time"

	"nightapp-server/internal/domain"

	"github.com/oklog/ulid/v2"
)

type PointsKind string

const (
	PointsKindEarn  PointsKind = "earn"  // points credited (visit acceptance)
	PointsKindSpend PointsKind = "spend" // points debited (reward redemption)
)

func (k PointsKind) Valid() bool {
	return k == PointsKindEarn || k == PointsKindSpend
}

// PointsTransaction is one append-only ledger row. Amount is always positive;
// Kind carries the direction. IDs are ULIDs so the ledger sorts by creation
// order without a secondary index.
type PointsTransaction struct {
	ID        string
	UserID    string
	Amount    int64
	Kind      PointsKind
	Note      string
	Meta      map[string]interface{} // serialized in DB as JSONB
	CreatedAt time.Time
}

// NewPointsTransaction validates and constructs a ledger row.
func NewPointsTransaction(userID string, amount int64, kind PointsKind, note string, meta map[string]interface{}) (*PointsTransaction, error) {
	if userID == "" || amount <= 0 || !kind.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &PointsTransaction{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Amount:    amount,
		Kind:      kind,
		Note:      note,
		Meta:      meta,
		CreatedAt: time.Now(),
	}, nil
}

func (t *PointsTransaction) IsZero() bool { return t == nil || t.ID == "" }

// Delta is the signed effect of this row on the user's balance.
func (t *PointsTransaction) Delta() int64 {
	if t.Kind == PointsKindSpend {
		return -t.Amount
	}
	return t.Amount
}
