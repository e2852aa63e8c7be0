package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgx's extended protocol takes one statement per Exec.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS payment_attempts (
		reference_id   TEXT PRIMARY KEY,
		order_id       TEXT NOT NULL,
		amount         BIGINT NOT NULL,
		status         TEXT NOT NULL,
		transaction_no TEXT NOT NULL DEFAULT '',
		bank_code      TEXT NOT NULL DEFAULT '',
		response_code  TEXT NOT NULL DEFAULT '',
		pay_date       TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL,
		expires_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS payment_attempts_order_id_idx ON payment_attempts (order_id)`,
}

// uniqueViolation is the Postgres SQLSTATE for a primary-key/unique hit.
const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the attempts table. Called once at startup.
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := ps.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (ps *PostgresStore) CreateAttempt(ctx context.Context, a *PaymentAttempt) error {
	_, err := ps.pool.Exec(ctx,
		`INSERT INTO payment_attempts
			(reference_id, order_id, amount, status, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ReferenceID, a.OrderID, a.Amount, string(a.Status), a.CreatedAt, a.ExpiresAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateReference
	}
	return err
}

func (ps *PostgresStore) GetAttempt(ctx context.Context, referenceID string) (*PaymentAttempt, error) {
	var a PaymentAttempt
	var status string
	err := ps.pool.QueryRow(ctx,
		`SELECT reference_id, order_id, amount, status,
			transaction_no, bank_code, response_code, pay_date,
			created_at, expires_at
		 FROM payment_attempts WHERE reference_id = $1`,
		referenceID,
	).Scan(
		&a.ReferenceID, &a.OrderID, &a.Amount, &status,
		&a.TransactionNo, &a.BankCode, &a.ResponseCode, &a.PayDate,
		&a.CreatedAt, &a.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

func (ps *PostgresStore) MarkPaid(ctx context.Context, referenceID, transactionNo, bankCode, payDate string) error {
	tag, err := ps.pool.Exec(ctx,
		`UPDATE payment_attempts
		 SET status = $2, transaction_no = $3, bank_code = $4, pay_date = $5, response_code = '00'
		 WHERE reference_id = $1 AND status = $6`,
		referenceID, string(StatusPaid), transactionNo, bankCode, payDate, string(StatusPending),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ps.transitionMiss(ctx, referenceID)
	}
	return nil
}

func (ps *PostgresStore) MarkFailed(ctx context.Context, referenceID, responseCode string) error {
	tag, err := ps.pool.Exec(ctx,
		`UPDATE payment_attempts
		 SET status = $2, response_code = $3
		 WHERE reference_id = $1 AND status = $4`,
		referenceID, string(StatusFailed), responseCode, string(StatusPending),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ps.transitionMiss(ctx, referenceID)
	}
	return nil
}

// transitionMiss distinguishes "no such attempt" from "attempt already
// terminal" after a guarded UPDATE matched nothing.
func (ps *PostgresStore) transitionMiss(ctx context.Context, referenceID string) error {
	_, err := ps.GetAttempt(ctx, referenceID)
	if err != nil {
		return err
	}
	return ErrAlreadyFinal
}
