// Package vnpay builds and verifies signed VNPay redirect requests.
//
// The gateway contract is positional only in one sense: the signed
// string is the lexicographically sorted, blank-stripped key=value list
// of every vnp_* parameter except the hash fields themselves. Both
// directions (our redirect out, its callback in) use the same
// canonical form.
package vnpay

import (
	"net/url"
	"strconv"
	"time"
)

// Config is loaded once at startup and injected; nothing in this
// package reads ambient environment state.
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	TTL        time.Duration
}

// Parameter names the gateway defines. The hash fields are never part
// of the signed string.
const (
	fieldVersion           = "vnp_Version"
	fieldCommand           = "vnp_Command"
	fieldTmnCode           = "vnp_TmnCode"
	fieldLocale            = "vnp_Locale"
	fieldCurrCode          = "vnp_CurrCode"
	fieldTxnRef            = "vnp_TxnRef"
	fieldOrderInfo         = "vnp_OrderInfo"
	fieldOrderType         = "vnp_OrderType"
	fieldAmount            = "vnp_Amount"
	fieldReturnURL         = "vnp_ReturnUrl"
	fieldIPAddr            = "vnp_IpAddr"
	fieldCreateDate        = "vnp_CreateDate"
	fieldExpireDate        = "vnp_ExpireDate"
	fieldBankCode          = "vnp_BankCode"
	fieldBankTranNo        = "vnp_BankTranNo"
	fieldCardType          = "vnp_CardType"
	fieldPayDate           = "vnp_PayDate"
	fieldResponseCode      = "vnp_ResponseCode"
	fieldTransactionNo     = "vnp_TransactionNo"
	fieldTransactionStatus = "vnp_TransactionStatus"
	fieldSecureHash        = "vnp_SecureHash"
	fieldSecureHashType    = "vnp_SecureHashType"
)

// DateFormat is the gateway's timestamp layout (second granularity).
const DateFormat = "20060102150405"

// OutboundParams is the full declared field set of a pay request.
// Amount is already in the gateway's scale (minor units x100).
type OutboundParams struct {
	Version    string
	Command    string
	TmnCode    string
	Locale     string
	CurrCode   string
	TxnRef     string
	OrderInfo  string
	OrderType  string
	Amount     int64
	ReturnURL  string
	IPAddr     string
	CreateDate string
	ExpireDate string
	BankCode   string // optional; dropped from the signed string when blank
}

// Values renders the declared fields into url.Values. Blank optional
// fields are simply not set, which keeps them out of the canonical
// string as well as the redirect query.
func (p OutboundParams) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set(fieldVersion, p.Version)
	set(fieldCommand, p.Command)
	set(fieldTmnCode, p.TmnCode)
	set(fieldLocale, p.Locale)
	set(fieldCurrCode, p.CurrCode)
	set(fieldTxnRef, p.TxnRef)
	set(fieldOrderInfo, p.OrderInfo)
	set(fieldOrderType, p.OrderType)
	if p.Amount > 0 {
		v.Set(fieldAmount, strconv.FormatInt(p.Amount, 10))
	}
	set(fieldReturnURL, p.ReturnURL)
	set(fieldIPAddr, p.IPAddr)
	set(fieldCreateDate, p.CreateDate)
	set(fieldExpireDate, p.ExpireDate)
	set(fieldBankCode, p.BankCode)
	return v
}

// CallbackParams is the declared field set of a gateway return/IPN
// callback. All values stay strings; the gateway echoes what it was
// sent plus its own transaction fields.
type CallbackParams struct {
	Amount            string
	BankCode          string
	BankTranNo        string
	CardType          string
	OrderInfo         string
	PayDate           string
	ResponseCode      string
	TmnCode           string
	TransactionNo     string
	TransactionStatus string
	TxnRef            string
	SecureHash        string
}

// CallbackFromQuery picks the declared fields out of a callback query.
// Anything the gateway sends beyond the declared set is ignored rather
// than signed, which is the point of typing the field list.
func CallbackFromQuery(q url.Values) CallbackParams {
	return CallbackParams{
		Amount:            q.Get(fieldAmount),
		BankCode:          q.Get(fieldBankCode),
		BankTranNo:        q.Get(fieldBankTranNo),
		CardType:          q.Get(fieldCardType),
		OrderInfo:         q.Get(fieldOrderInfo),
		PayDate:           q.Get(fieldPayDate),
		ResponseCode:      q.Get(fieldResponseCode),
		TmnCode:           q.Get(fieldTmnCode),
		TransactionNo:     q.Get(fieldTransactionNo),
		TransactionStatus: q.Get(fieldTransactionStatus),
		TxnRef:            q.Get(fieldTxnRef),
		SecureHash:        q.Get(fieldSecureHash),
	}
}

// Values renders the declared callback fields, claimed hash included.
func (p CallbackParams) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set(fieldAmount, p.Amount)
	set(fieldBankCode, p.BankCode)
	set(fieldBankTranNo, p.BankTranNo)
	set(fieldCardType, p.CardType)
	set(fieldOrderInfo, p.OrderInfo)
	set(fieldPayDate, p.PayDate)
	set(fieldResponseCode, p.ResponseCode)
	set(fieldTmnCode, p.TmnCode)
	set(fieldTransactionNo, p.TransactionNo)
	set(fieldTransactionStatus, p.TransactionStatus)
	set(fieldTxnRef, p.TxnRef)
	set(fieldSecureHash, p.SecureHash)
	return v
}
