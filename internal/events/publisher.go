// Package events publishes payment results for the back-office to
// consume. Publishing is best effort; a broker outage never blocks the
// customer's redirect.
package events

import (
	"context"
	"time"
)

// PaymentResult is the message body written to the result topic, keyed
// by reference id so consumers can compact per attempt.
type PaymentResult struct {
	ReferenceID   string    `json:"reference_id"`
	OrderID       string    `json:"order_id"`
	Status        string    `json:"status"`
	ResponseCode  string    `json:"response_code"`
	TransactionNo string    `json:"transaction_no,omitempty"`
	Amount        int64     `json:"amount"`
	PayDate       string    `json:"pay_date,omitempty"`
	At            time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev PaymentResult) error
	Close() error
}

// NopPublisher is used in tests and when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, PaymentResult) error { return nil }
func (NopPublisher) Close() error                                 { return nil }
