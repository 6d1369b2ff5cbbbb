package event

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abelmak/chapterdesk/core"
)

// Event statuses
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusScheduled, StatusCompleted, StatusCancelled}

type TicketType struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quota      int    `json:"quota"` // 0 = unlimited
	Sold       int    `json:"sold"`
}

type Event struct {
	ID              string       `json:"id"`
	ChapterID       string       `json:"chapter_id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	StartsAt        time.Time    `json:"starts_at"`
	EndsAt          time.Time    `json:"ends_at"`
	Capacity        int          `json:"capacity"` // 0 = unlimited
	RegisteredCount int          `json:"registered_count"`
	Status          string       `json:"status"`
	TicketTypes     []TicketType `json:"ticket_types,omitempty"`
	CreatedAt       time.Time    `json:"created_at"` // UTC
	UpdatedAt       time.Time    `json:"updated_at"` // UTC
}

func (e Event) IsActive() bool {
	return e.Status == StatusScheduled
}

func (e Event) IsFull() bool {
	return e.Capacity > 0 && e.RegisteredCount >= e.Capacity
}

// FillRate is registrations over capacity; 0 for unlimited-capacity events.
func (e Event) FillRate() float64 {
	if e.Capacity <= 0 {
		return 0
	}
	return float64(e.RegisteredCount) / float64(e.Capacity)
}

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	ChapterID   string       `json:"chapter_id" validate:"required"`
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description"`
	StartsAt    time.Time    `json:"starts_at" validate:"required"`
	EndsAt      time.Time    `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity    int          `json:"capacity" validate:"gte=0"`
	TicketTypes []TicketType `json:"ticket_types" validate:"dive"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	return validate.Struct(ne)
}

// UpdateEvent defines what information may be provided to modify an existing Event.
type UpdateEvent struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gte=0"`
	Status      string     `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

func (ue *UpdateEvent) Validate(orig Event, validate *validator.Validate) error {
	ue.Name = core.CleanString(ue.Name)
	if ue.Name == "" {
		ue.Name = orig.Name
	}
	if ue.Status == "" {
		ue.Status = orig.Status
	}
	return validate.Struct(ue)
}

// Registration registers a member on an event, optionally for a named ticket type.
type Registration struct {
	MemberID   string `json:"member_id" validate:"required"`
	TicketType string `json:"ticket_type"`
}

func (r *Registration) Validate(validate *validator.Validate) error {
	r.MemberID = core.CleanString(r.MemberID)
	r.TicketType = core.CleanString(r.TicketType)
	return validate.Struct(r)
}

type QueryFilter struct {
	ChapterID string    `query:"chapter_id"`
	Statuses  []string  `query:"status"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ChapterID == "" && qf.Statuses == nil && qf.From.IsZero() && qf.To.IsZero()
}
