package order

import (
	"context"
	"errors"
	"testing"
	"time"
)

func makeAttempt(ref string) *PaymentAttempt {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return &PaymentAttempt{
		ReferenceID: ref,
		OrderID:     "ORDER123",
		Amount:      100000,
		Status:      StatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(15 * time.Minute),
	}
}

func TestCreateAttempt_ThenGet(t *testing.T) {
	s := NewMemoryStore()
	if err := s.CreateAttempt(context.Background(), makeAttempt("ref-1")); err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}

	a, err := s.GetAttempt(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if a.OrderID != "ORDER123" || a.Status != StatusPending {
		t.Errorf("stored attempt mangled: %+v", a)
	}
}

func TestGetAttempt_UnknownReference(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.GetAttempt(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAttempt_DuplicateReference(t *testing.T) {
	s := NewMemoryStore()
	_ = s.CreateAttempt(context.Background(), makeAttempt("ref-dup"))
	err := s.CreateAttempt(context.Background(), makeAttempt("ref-dup"))
	if !errors.Is(err, ErrDuplicateReference) {
		t.Errorf("expected ErrDuplicateReference, got %v", err)
	}
}

func TestGetAttempt_ReturnsCopy(t *testing.T) {
	// Mutating a returned attempt must not leak back into the store.
	s := NewMemoryStore()
	_ = s.CreateAttempt(context.Background(), makeAttempt("ref-copy"))

	a, _ := s.GetAttempt(context.Background(), "ref-copy")
	a.Status = StatusPaid

	again, _ := s.GetAttempt(context.Background(), "ref-copy")
	if again.Status != StatusPending {
		t.Error("mutation of a returned attempt leaked into the store")
	}
}

func TestMarkPaid_Transition(t *testing.T) {
	s := NewMemoryStore()
	_ = s.CreateAttempt(context.Background(), makeAttempt("ref-pay"))

	if err := s.MarkPaid(context.Background(), "ref-pay", "14350980", "NCB", "20250101120500"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	a, _ := s.GetAttempt(context.Background(), "ref-pay")
	if a.Status != StatusPaid || a.TransactionNo != "14350980" || a.ResponseCode != "00" {
		t.Errorf("paid attempt: %+v", a)
	}
}

func TestMarkFailed_Transition(t *testing.T) {
	s := NewMemoryStore()
	_ = s.CreateAttempt(context.Background(), makeAttempt("ref-fail"))

	if err := s.MarkFailed(context.Background(), "ref-fail", "24"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	a, _ := s.GetAttempt(context.Background(), "ref-fail")
	if a.Status != StatusFailed || a.ResponseCode != "24" {
		t.Errorf("failed attempt: %+v", a)
	}
}

func TestTerminalStatus_NeverOverwritten(t *testing.T) {
	s := NewMemoryStore()
	_ = s.CreateAttempt(context.Background(), makeAttempt("ref-final"))
	_ = s.MarkPaid(context.Background(), "ref-final", "14350980", "NCB", "20250101120500")

	if err := s.MarkFailed(context.Background(), "ref-final", "24"); !errors.Is(err, ErrAlreadyFinal) {
		t.Errorf("expected ErrAlreadyFinal, got %v", err)
	}
	if err := s.MarkPaid(context.Background(), "ref-final", "other", "X", "x"); !errors.Is(err, ErrAlreadyFinal) {
		t.Errorf("expected ErrAlreadyFinal, got %v", err)
	}

	a, _ := s.GetAttempt(context.Background(), "ref-final")
	if a.Status != StatusPaid || a.TransactionNo != "14350980" {
		t.Errorf("terminal attempt was overwritten: %+v", a)
	}
}

func TestMarkPaid_UnknownReference(t *testing.T) {
	s := NewMemoryStore()
	if err := s.MarkPaid(context.Background(), "nope", "", "", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
