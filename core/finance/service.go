package finance

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("transaction not found")
)

type (
	Repository interface {
		CreateTransaction(t Transaction) (Transaction, error)
		QueryAllTransactions() ([]Transaction, error)
		GetTransactionByID(id string) (Transaction, error)
		// FilterTransactions applies AND operation on available QueryFilter fields.
		FilterTransactions(filter QueryFilter) ([]Transaction, error)
		UpdateTransactionStatus(id, status string) (Transaction, error)
	}

	Service interface {
		Record(nt NewTransaction) (Transaction, error)
		Query(filter *QueryFilter) ([]Transaction, error)
		GetByID(id string) (Transaction, error)
		SetStatus(id, status string) (Transaction, error)
		// Summarize folds the filtered transactions into totals. Only
		// completed transactions count towards revenue.
		Summarize(filter *QueryFilter) (Summary, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Record(nt NewTransaction) (Transaction, error) {
	now := time.Now().UTC()
	status := nt.Status
	if status == "" {
		status = StatusPending
	}
	occurred := nt.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	txn := Transaction{
		ID:         uuid.New().String(),
		MemberID:   nt.MemberID,
		Amount:     nt.Amount,
		Kind:       nt.Kind,
		Status:     status,
		OccurredAt: occurred.UTC(),
		CreatedAt:  now,
	}
	return svc.repo.CreateTransaction(txn)
}

func (svc *service) Query(filter *QueryFilter) ([]Transaction, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllTransactions()
	}
	return svc.repo.FilterTransactions(*filter)
}

func (svc *service) GetByID(id string) (Transaction, error) {
	return svc.repo.GetTransactionByID(id)
}

func (svc *service) SetStatus(id, status string) (Transaction, error) {
	return svc.repo.UpdateTransactionStatus(id, status)
}

func (svc *service) Summarize(filter *QueryFilter) (Summary, error) {
	txns, err := svc.Query(filter)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		ByKind:        make(map[string]int64, len(Kinds)),
		CountByStatus: make(map[string]int, len(Statuses)),
	}
	for _, txn := range txns {
		sum.TransactionCnt++
		sum.CountByStatus[txn.Status]++
		if txn.Status == StatusCompleted {
			sum.TotalCents += txn.Amount
			sum.ByKind[txn.Kind] += txn.Amount
		}
	}
	return sum, nil
}
