package inmemdb

import (
	"time"

	"github.com/abelmak/chapterdesk/core/event"
)

type eventRepository struct {
	db *eventTable
}

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) query() []event.Event {
	events := make([]event.Event, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		events = append(events, *e)
	}
	return events
}

func (repo *eventRepository) CreateEvent(evt event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) QueryAllEvents() ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *eventRepository) GetEventByID(id string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if evt, ok := repo.db.table[id]; ok {
		return *evt, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) FilterEvents(filter event.QueryFilter) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := repo.query()

	if filter.ChapterID != "" {
		var filtered []event.Event
		for _, e := range events {
			if e.ChapterID == filter.ChapterID {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if events != nil && len(filter.Statuses) > 0 {
		var filtered []event.Event
		for _, e := range events {
			for _, s := range filter.Statuses {
				if e.Status == s {
					filtered = append(filtered, e)
					break
				}
			}
		}
		events = filtered
	}
	if events != nil && !filter.From.IsZero() {
		var filtered []event.Event
		timeUTC := filter.From.UTC()
		for _, e := range events {
			if e.StartsAt.Equal(timeUTC) || e.StartsAt.After(timeUTC) {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if events != nil && !filter.To.IsZero() {
		var filtered []event.Event
		timeUTC := filter.To.UTC()
		for _, e := range events {
			if e.StartsAt.Before(timeUTC) || e.StartsAt.Equal(timeUTC) {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	return events, nil
}

func (repo *eventRepository) UpdateEvent(evt event.Event, startsAt, endsAt *time.Time, capacity *int) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origEvt, ok := repo.db.table[evt.ID]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	if evt.Name != "" {
		origEvt.Name = evt.Name
	}
	if evt.Status != "" {
		origEvt.Status = evt.Status
	}
	if startsAt != nil {
		origEvt.StartsAt = *startsAt
	}
	if endsAt != nil {
		origEvt.EndsAt = *endsAt
	}
	if capacity != nil {
		origEvt.Capacity = *capacity
	}
	if evt.TicketTypes != nil {
		origEvt.TicketTypes = evt.TicketTypes
	}
	origEvt.Description = evt.Description
	origEvt.UpdatedAt = evt.UpdatedAt

	repo.db.table[evt.ID] = origEvt
	return *origEvt, nil
}

func (repo *eventRepository) RegisterAttendee(id, ticketType string) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt, ok := repo.db.table[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	if evt.IsFull() {
		return event.Event{}, event.ErrFull
	}
	if ticketType != "" {
		found := false
		for i := range evt.TicketTypes {
			if evt.TicketTypes[i].Name != ticketType {
				continue
			}
			found = true
			tt := &evt.TicketTypes[i]
			if tt.Quota > 0 && tt.Sold >= tt.Quota {
				return event.Event{}, event.ErrTicketSoldOut
			}
			tt.Sold++
			break
		}
		if !found {
			return event.Event{}, event.ErrTicketNotFound
		}
	}
	evt.RegisteredCount++
	evt.UpdatedAt = time.Now().UTC()
	return *evt, nil
}

func (repo *eventRepository) DeleteEventsByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
