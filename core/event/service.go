package event

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abelmak/chapterdesk/core"
)

var (
	// errors
	ErrNotFound       = errors.New("event not found")
	ErrFull           = errors.New("event is at capacity")
	ErrNotOpen        = errors.New("event is not open for registration")
	ErrTicketNotFound = errors.New("unknown ticket type")
	ErrTicketSoldOut  = errors.New("ticket type is sold out")
)

type (
	Repository interface {
		CreateEvent(e Event) (Event, error)
		QueryAllEvents() ([]Event, error)
		GetEventByID(id string) (Event, error)
		// FilterEvents applies AND operation on available QueryFilter fields.
		FilterEvents(filter QueryFilter) ([]Event, error)
		UpdateEvent(e Event, startsAt, endsAt *time.Time, capacity *int) (Event, error)
		// RegisterAttendee bumps the registration count (and ticket-type sales
		// when ticketType is set) under the store's lock.
		RegisterAttendee(id, ticketType string) (Event, error)
		DeleteEventsByID(ids ...string) error
	}

	Service interface {
		Create(ne NewEvent) (Event, error)
		Query(filter *QueryFilter) ([]Event, error)
		GetByID(id string) (Event, error)
		Update(id string, ue UpdateEvent) (Event, error)
		Register(id string, reg Registration) (Event, error)
		Delete(ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ne NewEvent) (Event, error) {
	now := time.Now().UTC()
	evt := Event{
		ID:          uuid.New().String(),
		ChapterID:   ne.ChapterID,
		Name:        ne.Name,
		Description: ne.Description,
		StartsAt:    ne.StartsAt.UTC(),
		EndsAt:      ne.EndsAt.UTC(),
		Capacity:    ne.Capacity,
		Status:      StatusScheduled,
		TicketTypes: ne.TicketTypes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateEvent(evt)
}

func (svc *service) Query(filter *QueryFilter) ([]Event, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllEvents()
	}
	return svc.repo.FilterEvents(*filter)
}

func (svc *service) GetByID(id string) (Event, error) {
	return svc.repo.GetEventByID(id)
}

func (svc *service) Update(id string, ue UpdateEvent) (Event, error) {
	evt := Event{
		ID:          id,
		Name:        ue.Name,
		Description: ue.Description,
		Status:      ue.Status,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateEvent(evt, ue.StartsAt, ue.EndsAt, ue.Capacity)
}

// Register books a member onto an event. Capacity and ticket quotas are
// checked against the stored record; the write goes through the repo.
func (svc *service) Register(id string, reg Registration) (Event, error) {
	evt, err := svc.repo.GetEventByID(id)
	if err != nil {
		return Event{}, err
	}
	if !evt.IsActive() {
		return Event{}, core.NewValidationError(ErrNotOpen)
	}
	if evt.IsFull() {
		return Event{}, core.NewValidationError(ErrFull)
	}

	if reg.TicketType != "" {
		idx := -1
		for i, tt := range evt.TicketTypes {
			if tt.Name == reg.TicketType {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Event{}, core.NewValidationError(ErrTicketNotFound, core.FieldError{Field: "ticket_type", Error: ErrTicketNotFound.Error()})
		}
		tt := evt.TicketTypes[idx]
		if tt.Quota > 0 && tt.Sold >= tt.Quota {
			return Event{}, core.NewValidationError(ErrTicketSoldOut, core.FieldError{Field: "ticket_type", Error: ErrTicketSoldOut.Error()})
		}
	}

	evt, err = svc.repo.RegisterAttendee(evt.ID, reg.TicketType)
	// the repo re-checks under its lock; a registration lost to a
	// concurrent write surfaces the same way as the pre-check
	switch err {
	case ErrFull:
		return Event{}, core.NewValidationError(ErrFull)
	case ErrTicketNotFound:
		return Event{}, core.NewValidationError(ErrTicketNotFound, core.FieldError{Field: "ticket_type", Error: ErrTicketNotFound.Error()})
	case ErrTicketSoldOut:
		return Event{}, core.NewValidationError(ErrTicketSoldOut, core.FieldError{Field: "ticket_type", Error: ErrTicketSoldOut.Error()})
	}
	return evt, err
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteEventsByID(ids...)
}
