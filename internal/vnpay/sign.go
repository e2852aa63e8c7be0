package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
)

var (
	ErrMissingSecret    = errors.New("vnpay: hash secret not configured")
	ErrSignatureInvalid = errors.New("vnpay: signature mismatch")
)

// canonical builds the string that actually gets signed: hash fields
// and blank values dropped, remaining keys sorted bytewise, joined as
// key=value&... The input is only read, never mutated.
func canonical(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == fieldSecureHash || k == fieldSecureHashType {
			continue
		}
		if values.Get(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(values.Get(k))
	}
	return b.String()
}

// Sign computes the hex HMAC-SHA512 of the canonical parameter string.
// Deterministic: same values + same secret -> same signature.
func Sign(values url.Values, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(canonical(values)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over the callback values and compares
// it to the claimed vnp_SecureHash. A missing or blank claimed hash
// fails closed. Comparison is constant-time.
func Verify(values url.Values, secret string) bool {
	claimed := values.Get(fieldSecureHash)
	if claimed == "" {
		return false
	}
	want := Sign(values, secret)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(claimed)))
}

// BuildPaymentURL signs the outbound parameters and renders the
// redirect URL. A missing secret is a server-side misconfiguration; no
// partial URL is ever returned.
func BuildPaymentURL(cfg Config, p OutboundParams) (string, error) {
	if cfg.HashSecret == "" {
		return "", ErrMissingSecret
	}
	v := p.Values()
	v.Set(fieldSecureHash, Sign(v, cfg.HashSecret))
	return cfg.PayURL + "?" + v.Encode(), nil
}
