package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/abelmak/chapterdesk/core"
)

type (
	Repository interface {
		CreateEntry(e Entry) (Entry, error)
		FilterEntries(filter *QueryFilter) ([]Entry, error)
	}

	Service interface {
		// Record appends an entry. Failures are logged, never surfaced:
		// an audit write must not fail the operation it describes.
		Record(e Entry)
		Query(filter *QueryFilter) ([]Entry, error)
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (svc *service) Record(e Entry) {
	e.ID = uuid.New().String()
	if e.Status == "" {
		e.Status = StatusSuccess
	}
	e.CreatedAt = time.Now().UTC()
	if _, err := svc.repo.CreateEntry(e); err != nil {
		svc.logger.Error("audit: failed to record entry", "action", e.Action, "err", err)
	}
}

func (svc *service) Query(filter *QueryFilter) ([]Entry, error) {
	return svc.repo.FilterEntries(filter)
}
