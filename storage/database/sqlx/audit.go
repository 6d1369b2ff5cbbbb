package sqlxrepos

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/audit"
)

type auditRow struct {
	ID         string          `db:"id"`
	ActorID    string          `db:"actor_id"`
	ActorEmail string          `db:"actor_email"`
	Action     string          `db:"action"`
	ObjectType string          `db:"object_type"`
	ObjectID   string          `db:"object_id"`
	Status     string          `db:"status"`
	Metadata   json.RawMessage `db:"metadata"`
	CreatedAt  time.Time       `db:"created_at"`
}

func (r auditRow) toEntry() (audit.Entry, error) {
	var metadata map[string]string
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &metadata); err != nil {
			return audit.Entry{}, errors.Wrap(err, "decoding metadata")
		}
	}
	return audit.Entry{
		ID:         r.ID,
		ActorID:    r.ActorID,
		ActorEmail: r.ActorEmail,
		Action:     r.Action,
		ObjectType: r.ObjectType,
		ObjectID:   r.ObjectID,
		Status:     r.Status,
		Metadata:   metadata,
		CreatedAt:  r.CreatedAt,
	}, nil
}

func newAuditRow(e audit.Entry) (auditRow, error) {
	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return auditRow{}, errors.Wrap(err, "encoding metadata")
	}
	return auditRow{
		ID:         e.ID,
		ActorID:    e.ActorID,
		ActorEmail: e.ActorEmail,
		Action:     e.Action,
		ObjectType: e.ObjectType,
		ObjectID:   e.ObjectID,
		Status:     e.Status,
		Metadata:   raw,
		CreatedAt:  e.CreatedAt,
	}, nil
}

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) CreateEntry(e audit.Entry) (audit.Entry, error) {
	row, err := newAuditRow(e)
	if err != nil {
		return audit.Entry{}, err
	}
	const q = `
	INSERT INTO audit_log (
		id, actor_id, actor_email, action, object_type, object_id, status, metadata, created_at
	) VALUES (
		:id, :actor_id, :actor_email, :action, :object_type, :object_id, :status, :metadata, :created_at
	)`
	if _, err = repo.db.NamedExec(q, row); err != nil {
		return audit.Entry{}, errors.Wrap(err, "inserting audit entry")
	}
	return e, nil
}

func (repo *auditRepository) FilterEntries(filter *audit.QueryFilter) ([]audit.Entry, error) {
	q := `SELECT * FROM audit_log WHERE true`
	var args []interface{}

	if filter != nil {
		if filter.ActorID != "" {
			q += ` AND actor_id = ?`
			args = append(args, filter.ActorID)
		}
		if filter.Action != "" {
			q += ` AND action = ?`
			args = append(args, filter.Action)
		}
		if filter.ObjectType != "" {
			q += ` AND object_type = ?`
			args = append(args, filter.ObjectType)
		}
		if filter.ObjectID != "" {
			q += ` AND object_id = ?`
			args = append(args, filter.ObjectID)
		}
		if filter.From != nil {
			q += ` AND created_at >= ?`
			args = append(args, filter.From.UTC())
		}
		if filter.To != nil {
			q += ` AND created_at <= ?`
			args = append(args, filter.To.UTC())
		}
	}
	q += ` ORDER BY created_at DESC`

	var rows []auditRow
	if err := repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering audit entries")
	}

	entries := make([]audit.Entry, len(rows))
	for i, r := range rows {
		e, err := r.toEntry()
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}
