package inmemdb

import (
	"github.com/abelmak/chapterdesk/core/finance"
)

type transactionRepository struct {
	db *transactionTable
}

func NewTransactionRepository(db *DB) finance.Repository {
	return &transactionRepository{db: db.transaction}
}

func (repo *transactionRepository) query() []finance.Transaction {
	txns := make([]finance.Transaction, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		txns = append(txns, *t)
	}
	return txns
}

func (repo *transactionRepository) CreateTransaction(txn finance.Transaction) (finance.Transaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[txn.ID] = &txn
	return txn, nil
}

func (repo *transactionRepository) QueryAllTransactions() ([]finance.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *transactionRepository) GetTransactionByID(id string) (finance.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if txn, ok := repo.db.table[id]; ok {
		return *txn, nil
	}
	return finance.Transaction{}, finance.ErrNotFound
}

func (repo *transactionRepository) FilterTransactions(filter finance.QueryFilter) ([]finance.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	txns := repo.query()

	if filter.MemberID != "" {
		var filtered []finance.Transaction
		for _, t := range txns {
			if t.MemberID == filter.MemberID {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}
	if txns != nil && len(filter.Kinds) > 0 {
		var filtered []finance.Transaction
		for _, t := range txns {
			for _, k := range filter.Kinds {
				if t.Kind == k {
					filtered = append(filtered, t)
					break
				}
			}
		}
		txns = filtered
	}
	if txns != nil && len(filter.Statuses) > 0 {
		var filtered []finance.Transaction
		for _, t := range txns {
			for _, s := range filter.Statuses {
				if t.Status == s {
					filtered = append(filtered, t)
					break
				}
			}
		}
		txns = filtered
	}
	if txns != nil && !filter.From.IsZero() {
		var filtered []finance.Transaction
		timeUTC := filter.From.UTC()
		for _, t := range txns {
			if t.OccurredAt.Equal(timeUTC) || t.OccurredAt.After(timeUTC) {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}
	if txns != nil && !filter.To.IsZero() {
		var filtered []finance.Transaction
		timeUTC := filter.To.UTC()
		for _, t := range txns {
			if t.OccurredAt.Before(timeUTC) || t.OccurredAt.Equal(timeUTC) {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}

	return txns, nil
}

func (repo *transactionRepository) UpdateTransactionStatus(id, status string) (finance.Transaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	txn, ok := repo.db.table[id]
	if !ok {
		return finance.Transaction{}, finance.ErrNotFound
	}
	txn.Status = status
	return *txn, nil
}
