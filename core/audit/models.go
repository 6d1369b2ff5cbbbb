package audit

import (
	"time"
)

// Actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionSend   = "send"
	ActionExport = "export"
	ActionLogin  = "login"
)

// Outcomes
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is a single immutable audit record. Entries are append-only;
// there is no update or delete operation.
type Entry struct {
	ID         string            `json:"id"`
	ActorID    string            `json:"actor_id,omitempty"`
	ActorEmail string            `json:"actor_email,omitempty"`
	Action     string            `json:"action"`
	ObjectType string            `json:"object_type"`
	ObjectID   string            `json:"object_id,omitempty"`
	Status     string            `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"` // UTC
}

type QueryFilter struct {
	ActorID    string     `query:"actor_id"`
	Action     string     `query:"action"`
	ObjectType string     `query:"object_type"`
	ObjectID   string     `query:"object_id"`
	From       *time.Time `query:"from"`
	To         *time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ActorID == "" && qf.Action == "" && qf.ObjectType == "" &&
		qf.ObjectID == "" && qf.From == nil && qf.To == nil
}

func (qf *QueryFilter) Match(e Entry) bool {
	if qf.ActorID != "" && e.ActorID != qf.ActorID {
		return false
	}
	if qf.Action != "" && e.Action != qf.Action {
		return false
	}
	if qf.ObjectType != "" && e.ObjectType != qf.ObjectType {
		return false
	}
	if qf.ObjectID != "" && e.ObjectID != qf.ObjectID {
		return false
	}
	if qf.From != nil && e.CreatedAt.Before(*qf.From) {
		return false
	}
	if qf.To != nil && e.CreatedAt.After(*qf.To) {
		return false
	}
	return true
}
