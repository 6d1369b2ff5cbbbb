package finance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abelmak/chapterdesk/core"
)

// Transaction kinds
const (
	KindDues     = "dues"
	KindEvent    = "event"
	KindDonation = "donation"
)

// Transaction statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

var (
	Kinds    = []string{KindDues, KindEvent, KindDonation}
	Statuses = []string{StatusPending, StatusCompleted, StatusFailed, StatusRefunded}
)

type Transaction struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"member_id"`
	Amount     int64     `json:"amount"` // cents
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewTransaction contains information needed to record a new Transaction.
type NewTransaction struct {
	MemberID   string    `json:"member_id" validate:"required"`
	Amount     int64     `json:"amount" validate:"required,gt=0"`
	Kind       string    `json:"kind" validate:"required,oneof=dues event donation"`
	Status     string    `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (nt *NewTransaction) Validate(validate *validator.Validate) error {
	nt.MemberID = core.CleanString(nt.MemberID)
	return validate.Struct(nt)
}

type QueryFilter struct {
	MemberID string    `query:"member_id"`
	Kinds    []string  `query:"kind"`
	Statuses []string  `query:"status"`
	From     time.Time `query:"from"`
	To       time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.MemberID == "" && qf.Kinds == nil && qf.Statuses == nil && qf.From.IsZero() && qf.To.IsZero()
}

// Summary aggregates completed revenue by kind, with counts per status.
type Summary struct {
	TotalCents     int64            `json:"total_cents"`
	ByKind         map[string]int64 `json:"by_kind"`
	CountByStatus  map[string]int   `json:"count_by_status"`
	TransactionCnt int              `json:"transaction_count"`
}
