package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/event"
)

type eventRow struct {
	ID              string          `db:"id"`
	ChapterID       string          `db:"chapter_id"`
	Name            string          `db:"name"`
	Description     string          `db:"description"`
	StartsAt        time.Time       `db:"starts_at"`
	EndsAt          time.Time       `db:"ends_at"`
	Capacity        int             `db:"capacity"`
	RegisteredCount int             `db:"registered_count"`
	Status          string          `db:"status"`
	TicketTypes     json.RawMessage `db:"ticket_types"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r eventRow) toEvent() (event.Event, error) {
	var tickets []event.TicketType
	if len(r.TicketTypes) > 0 {
		if err := json.Unmarshal(r.TicketTypes, &tickets); err != nil {
			return event.Event{}, errors.Wrap(err, "decoding ticket types")
		}
	}
	return event.Event{
		ID:              r.ID,
		ChapterID:       r.ChapterID,
		Name:            r.Name,
		Description:     r.Description,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		Capacity:        r.Capacity,
		RegisteredCount: r.RegisteredCount,
		Status:          r.Status,
		TicketTypes:     tickets,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

func newEventRow(evt event.Event) (eventRow, error) {
	tickets := evt.TicketTypes
	if tickets == nil {
		tickets = []event.TicketType{}
	}
	raw, err := json.Marshal(tickets)
	if err != nil {
		return eventRow{}, errors.Wrap(err, "encoding ticket types")
	}
	return eventRow{
		ID:              evt.ID,
		ChapterID:       evt.ChapterID,
		Name:            evt.Name,
		Description:     evt.Description,
		StartsAt:        evt.StartsAt,
		EndsAt:          evt.EndsAt,
		Capacity:        evt.Capacity,
		RegisteredCount: evt.RegisteredCount,
		Status:          evt.Status,
		TicketTypes:     raw,
		CreatedAt:       evt.CreatedAt,
		UpdatedAt:       evt.UpdatedAt,
	}, nil
}

func toEvents(rows []eventRow) ([]event.Event, error) {
	events := make([]event.Event, len(rows))
	for i, r := range rows {
		evt, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		events[i] = evt
	}
	return events, nil
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) event.Repository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(evt event.Event) (event.Event, error) {
	row, err := newEventRow(evt)
	if err != nil {
		return event.Event{}, err
	}
	const q = `
	INSERT INTO events (
		id, chapter_id, name, description, starts_at, ends_at, capacity,
		registered_count, status, ticket_types, created_at, updated_at
	) VALUES (
		:id, :chapter_id, :name, :description, :starts_at, :ends_at, :capacity,
		:registered_count, :status, :ticket_types, :created_at, :updated_at
	)`
	if _, err = repo.db.NamedExec(q, row); err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return evt, nil
}

func (repo *eventRepository) QueryAllEvents() ([]event.Event, error) {
	var rows []eventRow
	if err := repo.db.Select(&rows, `SELECT * FROM events`); err != nil {
		return nil, errors.Wrap(err, "selecting events")
	}
	return toEvents(rows)
}

func (repo *eventRepository) GetEventByID(id string) (event.Event, error) {
	var row eventRow
	if err := repo.db.Get(&row, `SELECT * FROM events WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, errors.Wrap(err, "selecting event")
	}
	return row.toEvent()
}

func (repo *eventRepository) FilterEvents(filter event.QueryFilter) ([]event.Event, error) {
	q := `SELECT * FROM events WHERE true`
	var args []interface{}

	if filter.ChapterID != "" {
		q += ` AND chapter_id = ?`
		args = append(args, filter.ChapterID)
	}
	if len(filter.Statuses) > 0 {
		inQ, inArgs, err := sqlx.In(`status IN (?)`, filter.Statuses)
		if err != nil {
			return nil, errors.Wrap(err, "building status filter")
		}
		q += ` AND ` + inQ
		args = append(args, inArgs...)
	}
	if !filter.From.IsZero() {
		q += ` AND starts_at >= ?`
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q += ` AND starts_at <= ?`
		args = append(args, filter.To.UTC())
	}

	var rows []eventRow
	if err := repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering events")
	}
	return toEvents(rows)
}

func (repo *eventRepository) UpdateEvent(evt event.Event, startsAt, endsAt *time.Time, capacity *int) (event.Event, error) {
	const q = `
	UPDATE events SET
		name = $2,
		description = $3,
		starts_at = COALESCE($4, starts_at),
		ends_at = COALESCE($5, ends_at),
		capacity = COALESCE($6, capacity),
		status = COALESCE(NULLIF($7, ''), status),
		updated_at = $8
	WHERE id = $1`

	res, err := repo.db.Exec(q, evt.ID, evt.Name, evt.Description, startsAt, endsAt, capacity, evt.Status, evt.UpdatedAt)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return repo.GetEventByID(evt.ID)
}

func (repo *eventRepository) RegisterAttendee(id, ticketType string) (event.Event, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return event.Event{}, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	var row eventRow
	if err = tx.Get(&row, `SELECT * FROM events WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, errors.Wrap(err, "selecting event")
	}
	evt, err := row.toEvent()
	if err != nil {
		return event.Event{}, err
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

	tickets, err := json.Marshal(evt.TicketTypes)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "encoding ticket types")
	}
	const q = `UPDATE events SET registered_count = $2, ticket_types = $3, updated_at = $4 WHERE id = $1`
	if _, err = tx.Exec(q, evt.ID, evt.RegisteredCount, tickets, evt.UpdatedAt); err != nil {
		return event.Event{}, errors.Wrap(err, "registering attendee")
	}
	if err = tx.Commit(); err != nil {
		return event.Event{}, errors.Wrap(err, "committing transaction")
	}
	return evt, nil
}

func (repo *eventRepository) DeleteEventsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM events WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return nil
}
