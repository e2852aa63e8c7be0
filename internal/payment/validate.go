package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxAmount is the ceiling in currency minor units, pre gateway
	// scaling.
	MaxAmount = 1_000_000_000

	maxDescriptionLen = 100
	maxBankCodeLen    = 20

	// loopbackIP is the fallback for anything that is not a strict
	// IPv4 dotted quad (IPv6 callers included).
	loopbackIP = "127.0.0.1"
)

var (
	ErrAmountNotPositive = errors.New("payment: amount must be positive")
	ErrAmountTooLarge    = fmt.Errorf("payment: amount exceeds %d", int64(MaxAmount))
	ErrEmptyDescription  = errors.New("payment: description is empty")
	ErrBankCodeTooLong   = fmt.Errorf("payment: bank code exceeds %d chars", maxBankCodeLen)
)

func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrAmountNotPositive
	}
	if amount > MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// SanitizeDescription trims surrounding whitespace and truncates to the
// gateway's length limit. No HTML/SQL escaping here; that belongs to
// the layer that renders or persists.
func SanitizeDescription(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxDescriptionLen {
		s = string(r[:maxDescriptionLen])
	}
	return s
}

func ValidateBankCode(code string) error {
	if len(code) > maxBankCodeLen {
		return ErrBankCodeTooLong
	}
	return nil
}

// ClientIP normalizes a client address to a strict IPv4 dotted quad.
// Accepts "ip" or "ip:port"; anything else (IPv6, hostnames, garbage)
// falls back to loopback rather than failing the checkout.
func ClientIP(raw string) string {
	host := raw
	if i := strings.LastIndex(raw, ":"); i >= 0 && !strings.Contains(raw, "]") {
		// only split when it looks like ip:port, not an IPv6 literal
		if strings.Count(raw, ":") == 1 {
			host = raw[:i]
		}
	}
	if isDottedQuad(host) {
		return host
	}
	return loopbackIP
}

func isDottedQuad(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if len(p) == 0 || len(p) > 3 {
			return false
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
		}
		if n, _ := strconv.Atoi(p); n > 255 {
			return false
		}
	}
	return true
}
