// Package api wires the payment flow to HTTP: checkout from the
// storefront, return/IPN callbacks from the gateway, and attempt
// lookups for the back-office.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnhThu09/Duantotnghiep-sub000/internal/order"
	"github.com/AnhThu09/Duantotnghiep-sub000/internal/payment"
	apperrors "github.com/AnhThu09/Duantotnghiep-sub000/pkg/errors"
	m "github.com/AnhThu09/Duantotnghiep-sub000/pkg/metrics"
)

const serviceName = "storefront-payments"

type Deps struct {
	Payments   *payment.Service
	Store      order.Store
	SuccessURL string
	FailureURL string
}

func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"ts":      time.Now().UTC(),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/payments/checkout", CheckoutHandler(d)).Methods(http.MethodPost)
	r.HandleFunc("/api/payments/{reference}", AttemptHandler(d)).Methods(http.MethodGet)
	r.HandleFunc("/payment/vnpay/return", ReturnHandler(d)).Methods(http.MethodGet)
	r.HandleFunc("/payment/vnpay/ipn", IPNHandler(d)).Methods(http.MethodGet)

	return r
}

type checkoutIn struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	BankCode    string `json:"bank_code,omitempty"`
}

type checkoutOut struct {
	ReferenceID string `json:"reference_id"`
	PaymentURL  string `json:"payment_url"`
	ExpiresAt   string `json:"expires_at"`
}

type errorOut struct {
	Error string `json:"error"`
}

func CheckoutHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in checkoutIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorOut{Error: "bad_json"})
			return
		}

		res, err := d.Payments.CreatePayment(r.Context(), payment.CheckoutInput{
			OrderID:     in.OrderID,
			Amount:      in.Amount,
			Description: in.Description,
			BankCode:    in.BankCode,
			ClientIP:    clientAddr(r),
		})
		if err != nil {
			switch apperrors.CodeOf(err) {
			case apperrors.CodeValidation:
				writeJSON(w, http.StatusBadRequest, errorOut{Error: err.Error()})
			default:
				// signing/storage details stay in the log, not the response
				log.Printf("[api] checkout %s: %v", in.OrderID, err)
				writeJSON(w, http.StatusInternalServerError, errorOut{Error: "internal_error"})
			}
			return
		}

		writeJSON(w, http.StatusOK, checkoutOut{
			ReferenceID: res.ReferenceID,
			PaymentURL:  res.PaymentURL,
			ExpiresAt:   res.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}

// ReturnHandler lands the customer's browser after the gateway
// redirect. Every path out of here is a redirect; mismatches go to the
// generic failure page with nothing sensitive in the URL.
func ReturnHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := d.Payments.HandleCallback(r.Context(), r.URL.Query())
		if err != nil {
			log.Printf("[api] return callback %s: %v", out.ReferenceID, err)
			redirectFailure(w, r, d.FailureURL, "server_error", out.OrderID)
			return
		}
		m.IncCallback(serviceName, callbackCodeLabel(out))

		switch out.Status {
		case payment.CallbackPaid:
			redirectSuccess(w, r, d.SuccessURL, out)
		case payment.CallbackAlreadyConfirmed:
			if out.FinalStatus == order.StatusPaid {
				redirectSuccess(w, r, d.SuccessURL, out)
				return
			}
			redirectFailure(w, r, d.FailureURL, out.ResponseCode, out.OrderID)
		case payment.CallbackFailed:
			redirectFailure(w, r, d.FailureURL, out.ResponseCode, out.OrderID)
		case payment.CallbackAmountMismatch:
			redirectFailure(w, r, d.FailureURL, "amount_mismatch", out.OrderID)
		case payment.CallbackUnknownReference:
			redirectFailure(w, r, d.FailureURL, "unknown_reference", out.OrderID)
		default:
			redirectFailure(w, r, d.FailureURL, "invalid_signature", out.OrderID)
		}
	}
}

// ipnOut follows the gateway's confirmation convention.
type ipnOut struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

func IPNHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := d.Payments.HandleCallback(r.Context(), r.URL.Query())
		if err != nil {
			log.Printf("[api] ipn callback %s: %v", out.ReferenceID, err)
			writeJSON(w, http.StatusOK, ipnOut{RspCode: "99", Message: "Unknown error"})
			return
		}
		m.IncCallback(serviceName, callbackCodeLabel(out))

		switch out.Status {
		case payment.CallbackPaid, payment.CallbackFailed:
			writeJSON(w, http.StatusOK, ipnOut{RspCode: "00", Message: "Confirm Success"})
		case payment.CallbackAlreadyConfirmed:
			writeJSON(w, http.StatusOK, ipnOut{RspCode: "02", Message: "Order already confirmed"})
		case payment.CallbackUnknownReference:
			writeJSON(w, http.StatusOK, ipnOut{RspCode: "01", Message: "Order not found"})
		case payment.CallbackAmountMismatch:
			writeJSON(w, http.StatusOK, ipnOut{RspCode: "04", Message: "Invalid amount"})
		default:
			writeJSON(w, http.StatusOK, ipnOut{RspCode: "97", Message: "Invalid signature"})
		}
	}
}

type attemptOut struct {
	ReferenceID   string `json:"reference_id"`
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	TransactionNo string `json:"transaction_no,omitempty"`
	ResponseCode  string `json:"response_code,omitempty"`
	PayDate       string `json:"pay_date,omitempty"`
}

func AttemptHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := mux.Vars(r)["reference"]
		a, err := d.Store.GetAttempt(r.Context(), ref)
		if errors.Is(err, order.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorOut{Error: "not_found"})
			return
		}
		if err != nil {
			log.Printf("[api] attempt lookup %s: %v", ref, err)
			writeJSON(w, http.StatusInternalServerError, errorOut{Error: "internal_error"})
			return
		}
		writeJSON(w, http.StatusOK, attemptOut{
			ReferenceID:   a.ReferenceID,
			OrderID:       a.OrderID,
			Amount:        a.Amount,
			Status:        string(a.Status),
			TransactionNo: a.TransactionNo,
			ResponseCode:  a.ResponseCode,
			PayDate:       a.PayDate,
		})
	}
}

/******************** Helpers ********************/

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientAddr prefers the first X-Forwarded-For hop, falling back to the
// socket peer. Normalization to a valid IPv4 happens in the payment
// layer.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}

func redirectSuccess(w http.ResponseWriter, r *http.Request, base string, out payment.CallbackOutcome) {
	q := url.Values{}
	q.Set("orderId", out.OrderID)
	q.Set("status", "paid")
	q.Set("amount", strconv.FormatInt(out.Amount, 10))
	q.Set("transactionId", out.TransactionNo)
	q.Set("payDate", out.PayDate)
	http.Redirect(w, r, base+"?"+q.Encode(), http.StatusFound)
}

func redirectFailure(w http.ResponseWriter, r *http.Request, base, code, orderID string) {
	q := url.Values{}
	q.Set("error", code)
	if orderID != "" {
		q.Set("orderId", orderID)
	}
	http.Redirect(w, r, base+"?"+q.Encode(), http.StatusFound)
}

func callbackCodeLabel(out payment.CallbackOutcome) string {
	if out.Status == payment.CallbackInvalidSignature {
		return "invalid_signature"
	}
	if out.ResponseCode == "" {
		return "none"
	}
	return out.ResponseCode
}
