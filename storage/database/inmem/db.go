package inmemdb

import (
	"sync"

	"github.com/abelmak/chapterdesk/core/audit"
	"github.com/abelmak/chapterdesk/core/campaign"
	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/event"
	"github.com/abelmak/chapterdesk/core/finance"
	"github.com/abelmak/chapterdesk/core/member"
	"github.com/abelmak/chapterdesk/core/user"
)

type (
	DB struct {
		chapter     *chapterTable
		member      *memberTable
		event       *eventTable
		transaction *transactionTable
		campaign    *campaignTable
		audit       *auditTable
		user        *userTable
	}

	chapterTable struct {
		sync.RWMutex
		table map[string]*chapter.Chapter
	}

	memberTable struct {
		sync.RWMutex
		table map[string]*member.Member
	}

	eventTable struct {
		sync.RWMutex
		table map[string]*event.Event
	}

	transactionTable struct {
		sync.RWMutex
		table map[string]*finance.Transaction
	}

	campaignTable struct {
		sync.RWMutex
		table map[string]*campaign.Campaign
	}

	auditTable struct {
		sync.RWMutex
		entries []audit.Entry
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
)

func Open() (*DB, error) {
	db := &DB{
		chapter:     &chapterTable{table: make(map[string]*chapter.Chapter)},
		member:      &memberTable{table: make(map[string]*member.Member)},
		event:       &eventTable{table: make(map[string]*event.Event)},
		transaction: &transactionTable{table: make(map[string]*finance.Transaction)},
		campaign:    &campaignTable{table: make(map[string]*campaign.Campaign)},
		audit:       &auditTable{},
		user:        &userTable{table: make(map[string]*user.User)},
	}
	return db, nil
}
