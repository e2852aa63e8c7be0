// Package order persists payment attempts and their status
// transitions. An attempt is one redirect to the gateway for one
// logical order; a retried checkout makes a new attempt with a new
// reference id.
package order

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// Terminal reports whether a status may no longer change. Replayed
// gateway callbacks must not overwrite a terminal attempt.
func (s Status) Terminal() bool { return s == StatusPaid || s == StatusFailed }

type PaymentAttempt struct {
	ReferenceID   string
	OrderID       string
	Amount        int64 // currency minor units, pre gateway scaling
	Status        Status
	TransactionNo string
	BankCode      string
	ResponseCode  string
	PayDate       string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

var (
	ErrNotFound           = errors.New("order: attempt not found")
	ErrDuplicateReference = errors.New("order: reference id already used")
	ErrAlreadyFinal       = errors.New("order: attempt already in a terminal status")
)

type Store interface {
	CreateAttempt(ctx context.Context, a *PaymentAttempt) error
	GetAttempt(ctx context.Context, referenceID string) (*PaymentAttempt, error)

	// MarkPaid and MarkFailed move a PENDING attempt to a terminal
	// status. Both return ErrAlreadyFinal if the attempt is terminal
	// and ErrNotFound if the reference is unknown.
	MarkPaid(ctx context.Context, referenceID, transactionNo, bankCode, payDate string) error
	MarkFailed(ctx context.Context, referenceID, responseCode string) error
}
