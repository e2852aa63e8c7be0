// Package payment orchestrates the checkout-to-gateway flow: building
// signed redirect URLs, verifying callbacks, and persisting the
// resulting status transitions.
package payment

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/AnhThu09/Duantotnghiep-sub000/internal/events"
	"github.com/AnhThu09/Duantotnghiep-sub000/internal/order"
	"github.com/AnhThu09/Duantotnghiep-sub000/internal/vnpay"
	apperrors "github.com/AnhThu09/Duantotnghiep-sub000/pkg/errors"
)

type CheckoutInput struct {
	OrderID     string
	Amount      int64 // currency minor units
	Description string
	BankCode    string
	ClientIP    string
}

type CheckoutResult struct {
	ReferenceID string
	PaymentURL  string
	ExpiresAt   time.Time
}

// CallbackStatus classifies what a verified (or rejected) callback
// means for the attempt.
type CallbackStatus int

const (
	CallbackInvalidSignature CallbackStatus = iota
	CallbackUnknownReference
	CallbackAlreadyConfirmed
	CallbackAmountMismatch
	CallbackPaid
	CallbackFailed
)

type CallbackOutcome struct {
	Status        CallbackStatus
	OrderID       string
	ReferenceID   string
	Amount        int64
	TransactionNo string
	PayDate       string
	ResponseCode  string
	Message       string

	// FinalStatus is the attempt's stored status after handling, so a
	// replayed success callback can still land on the success page.
	FinalStatus order.Status
}

type Service struct {
	cfg   vnpay.Config
	store order.Store
	bus   events.Publisher
	now   func() time.Time
}

func NewService(cfg vnpay.Config, store order.Store, bus events.Publisher) *Service {
	return &Service{cfg: cfg, store: store, bus: bus, now: time.Now}
}

// CreatePayment validates the checkout input, records a pending
// attempt, and returns the signed gateway redirect URL. The reference
// id is unique per attempt; a duplicate hit on the store gets one retry
// with a fresh suffix.
func (s *Service) CreatePayment(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if in.OrderID == "" {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "order id is required", nil)
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "invalid amount", err)
	}
	desc := SanitizeDescription(in.Description)
	if desc == "" {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "description is required", ErrEmptyDescription)
	}
	if err := ValidateBankCode(in.BankCode); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "invalid bank code", err)
	}

	now := s.now()
	expires := now.Add(s.cfg.TTL)

	attempt := &order.PaymentAttempt{
		OrderID:   in.OrderID,
		Amount:    in.Amount,
		Status:    order.StatusPending,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	for try := 0; ; try++ {
		attempt.ReferenceID = NewReference(in.OrderID, now)
		err := s.store.CreateAttempt(ctx, attempt)
		if err == nil {
			break
		}
		if errors.Is(err, order.ErrDuplicateReference) && try == 0 {
			continue
		}
		return nil, apperrors.Wrap(apperrors.CodeStorage, "record payment attempt", err)
	}

	params := vnpay.OutboundParams{
		Version:    "2.1.0",
		Command:    "pay",
		TmnCode:    s.cfg.TmnCode,
		Locale:     "vn",
		CurrCode:   "VND",
		TxnRef:     attempt.ReferenceID,
		OrderInfo:  desc,
		OrderType:  "other",
		Amount:     in.Amount * 100,
		ReturnURL:  s.cfg.ReturnURL,
		IPAddr:     ClientIP(in.ClientIP),
		CreateDate: now.Format(vnpay.DateFormat),
		ExpireDate: expires.Format(vnpay.DateFormat),
		BankCode:   in.BankCode,
	}
	payURL, err := vnpay.BuildPaymentURL(s.cfg, params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSigning, "sign payment request", err)
	}

	return &CheckoutResult{
		ReferenceID: attempt.ReferenceID,
		PaymentURL:  payURL,
		ExpiresAt:   expires,
	}, nil
}

// HandleCallback verifies a gateway callback and applies the resulting
// transition. Signature mismatch fails closed: nothing is persisted and
// no internal comparison values leave this function. The returned error
// is infrastructure-only (storage); business outcomes are in the
// CallbackOutcome.
func (s *Service) HandleCallback(ctx context.Context, q url.Values) (CallbackOutcome, error) {
	cb := vnpay.CallbackFromQuery(q)
	out := CallbackOutcome{
		Status:        CallbackInvalidSignature,
		ReferenceID:   cb.TxnRef,
		TransactionNo: cb.TransactionNo,
		PayDate:       cb.PayDate,
		ResponseCode:  cb.ResponseCode,
	}

	if !vnpay.Verify(cb.Values(), s.cfg.HashSecret) {
		out.Message = "invalid signature"
		return out, nil
	}

	attempt, err := s.store.GetAttempt(ctx, cb.TxnRef)
	if errors.Is(err, order.ErrNotFound) {
		out.Status = CallbackUnknownReference
		out.Message = "unknown payment reference"
		return out, nil
	}
	if err != nil {
		return out, apperrors.Wrap(apperrors.CodeStorage, "load payment attempt", err)
	}
	out.OrderID = attempt.OrderID
	out.Amount = attempt.Amount
	out.FinalStatus = attempt.Status

	gatewayAmount, parseErr := strconv.ParseInt(cb.Amount, 10, 64)
	if parseErr != nil || gatewayAmount != attempt.Amount*100 {
		out.Status = CallbackAmountMismatch
		out.Message = "amount does not match the quoted attempt"
		return out, nil
	}

	if attempt.Status.Terminal() {
		out.Status = CallbackAlreadyConfirmed
		out.Message = "attempt already confirmed"
		return out, nil
	}

	if vnpay.IsSuccess(cb.ResponseCode) {
		err = s.store.MarkPaid(ctx, cb.TxnRef, cb.TransactionNo, cb.BankCode, cb.PayDate)
		out.Status = CallbackPaid
		out.FinalStatus = order.StatusPaid
	} else {
		err = s.store.MarkFailed(ctx, cb.TxnRef, cb.ResponseCode)
		out.Status = CallbackFailed
		out.FinalStatus = order.StatusFailed
	}
	if errors.Is(err, order.ErrAlreadyFinal) {
		// a concurrent callback won the transition
		out.Status = CallbackAlreadyConfirmed
		out.Message = "attempt already confirmed"
		if cur, gerr := s.store.GetAttempt(ctx, cb.TxnRef); gerr == nil {
			out.FinalStatus = cur.Status
		}
		return out, nil
	}
	if err != nil {
		return out, apperrors.Wrap(apperrors.CodeStorage, "persist payment status", err)
	}
	out.Message = vnpay.CodeDescription(cb.ResponseCode)

	s.publishResult(ctx, out)
	return out, nil
}

func (s *Service) publishResult(ctx context.Context, out CallbackOutcome) {
	status := order.StatusFailed
	if out.Status == CallbackPaid {
		status = order.StatusPaid
	}
	ev := events.PaymentResult{
		ReferenceID:   out.ReferenceID,
		OrderID:       out.OrderID,
		Status:        string(status),
		ResponseCode:  out.ResponseCode,
		TransactionNo: out.TransactionNo,
		Amount:        out.Amount,
		PayDate:       out.PayDate,
		At:            s.now().UTC(),
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		log.Printf("[payment] publish result %s: %v", out.ReferenceID, err)
	}
}
