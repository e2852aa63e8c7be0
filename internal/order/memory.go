package order

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used by tests and local runs
// without Postgres.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*PaymentAttempt
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*PaymentAttempt)}
}

func (ms *MemoryStore) CreateAttempt(_ context.Context, a *PaymentAttempt) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, exists := ms.data[a.ReferenceID]; exists {
		return ErrDuplicateReference
	}
	cp := *a
	ms.data[a.ReferenceID] = &cp
	return nil
}

func (ms *MemoryStore) GetAttempt(_ context.Context, referenceID string) (*PaymentAttempt, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	a, ok := ms.data[referenceID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (ms *MemoryStore) MarkPaid(_ context.Context, referenceID, transactionNo, bankCode, payDate string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	a, ok := ms.data[referenceID]
	if !ok {
		return ErrNotFound
	}
	if a.Status.Terminal() {
		return ErrAlreadyFinal
	}
	a.Status = StatusPaid
	a.TransactionNo = transactionNo
	a.BankCode = bankCode
	a.PayDate = payDate
	a.ResponseCode = "00"
	return nil
}

func (ms *MemoryStore) MarkFailed(_ context.Context, referenceID, responseCode string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	a, ok := ms.data[referenceID]
	if !ok {
		return ErrNotFound
	}
	if a.Status.Terminal() {
		return ErrAlreadyFinal
	}
	a.Status = StatusFailed
	a.ResponseCode = responseCode
	return nil
}
