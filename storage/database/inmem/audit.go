package inmemdb

import (
	"github.com/abelmak/chapterdesk/core/audit"
)

type auditRepository struct {
	db *auditTable
}

func NewAuditRepository(db *DB) audit.Repository {
	return &auditRepository{db: db.audit}
}

func (repo *auditRepository) CreateEntry(e audit.Entry) (audit.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.entries = append(repo.db.entries, e)
	return e, nil
}

func (repo *auditRepository) FilterEntries(filter *audit.QueryFilter) ([]audit.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == nil || filter.IsEmpty() {
		entries := make([]audit.Entry, len(repo.db.entries))
		copy(entries, repo.db.entries)
		return entries, nil
	}

	var entries []audit.Entry
	for _, e := range repo.db.entries {
		if filter.Match(e) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
