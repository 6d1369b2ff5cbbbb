package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/finance"
)

type transactionRow struct {
	ID         string    `db:"id"`
	MemberID   string    `db:"member_id"`
	Amount     int64     `db:"amount"`
	Kind       string    `db:"kind"`
	Status     string    `db:"status"`
	OccurredAt time.Time `db:"occurred_at"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r transactionRow) toTransaction() finance.Transaction {
	return finance.Transaction{
		ID:         r.ID,
		MemberID:   r.MemberID,
		Amount:     r.Amount,
		Kind:       r.Kind,
		Status:     r.Status,
		OccurredAt: r.OccurredAt,
		CreatedAt:  r.CreatedAt,
	}
}

func newTransactionRow(txn finance.Transaction) transactionRow {
	return transactionRow{
		ID:         txn.ID,
		MemberID:   txn.MemberID,
		Amount:     txn.Amount,
		Kind:       txn.Kind,
		Status:     txn.Status,
		OccurredAt: txn.OccurredAt,
		CreatedAt:  txn.CreatedAt,
	}
}

func toTransactions(rows []transactionRow) []finance.Transaction {
	txns := make([]finance.Transaction, len(rows))
	for i, r := range rows {
		txns[i] = r.toTransaction()
	}
	return txns
}

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) finance.Repository {
	return &transactionRepository{db: db}
}

func (repo *transactionRepository) CreateTransaction(txn finance.Transaction) (finance.Transaction, error) {
	const q = `
	INSERT INTO transactions (id, member_id, amount, kind, status, occurred_at, created_at)
	VALUES (:id, :member_id, :amount, :kind, :status, :occurred_at, :created_at)`
	if _, err := repo.db.NamedExec(q, newTransactionRow(txn)); err != nil {
		return finance.Transaction{}, errors.Wrap(err, "inserting transaction")
	}
	return txn, nil
}

func (repo *transactionRepository) QueryAllTransactions() ([]finance.Transaction, error) {
	var rows []transactionRow
	if err := repo.db.Select(&rows, `SELECT * FROM transactions`); err != nil {
		return nil, errors.Wrap(err, "selecting transactions")
	}
	return toTransactions(rows), nil
}

func (repo *transactionRepository) GetTransactionByID(id string) (finance.Transaction, error) {
	var row transactionRow
	if err := repo.db.Get(&row, `SELECT * FROM transactions WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return finance.Transaction{}, finance.ErrNotFound
		}
		return finance.Transaction{}, errors.Wrap(err, "selecting transaction")
	}
	return row.toTransaction(), nil
}

func (repo *transactionRepository) FilterTransactions(filter finance.QueryFilter) ([]finance.Transaction, error) {
	q := `SELECT * FROM transactions WHERE true`
	var args []interface{}

	if filter.MemberID != "" {
		q += ` AND member_id = ?`
		args = append(args, filter.MemberID)
	}
	if len(filter.Kinds) > 0 {
		inQ, inArgs, err := sqlx.In(`kind IN (?)`, filter.Kinds)
		if err != nil {
			return nil, errors.Wrap(err, "building kind filter")
		}
		q += ` AND ` + inQ
		args = append(args, inArgs...)
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
		q += ` AND occurred_at >= ?`
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q += ` AND occurred_at <= ?`
		args = append(args, filter.To.UTC())
	}

	var rows []transactionRow
	if err := repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering transactions")
	}
	return toTransactions(rows), nil
}

func (repo *transactionRepository) UpdateTransactionStatus(id, status string) (finance.Transaction, error) {
	res, err := repo.db.Exec(`UPDATE transactions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return finance.Transaction{}, errors.Wrap(err, "updating transaction status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return finance.Transaction{}, finance.ErrNotFound
	}
	return repo.GetTransactionByID(id)
}
