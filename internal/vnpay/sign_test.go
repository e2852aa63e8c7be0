package vnpay

import (
	"net/url"
	"strings"
	"testing"
)

const testSecret = "testsecret"

// scenarioValues are the fixed vectors used across the signing tests.
func scenarioValues() url.Values {
	v := url.Values{}
	v.Set("vnp_Amount", "10000000")
	v.Set("vnp_TxnRef", "ORDER123_20250101120000_AB12CD")
	v.Set("vnp_OrderInfo", "Thanh toan don hang")
	return v
}

func TestSign_Deterministic(t *testing.T) {
	v := scenarioValues()
	first := Sign(v, testSecret)
	second := Sign(v, testSecret)
	if first != second {
		t.Errorf("same input signed twice gave different signatures:\n%s\n%s", first, second)
	}
	if len(first) != 128 {
		t.Errorf("expected 128 hex chars for SHA-512, got %d", len(first))
	}
}

func TestSign_DoesNotMutateInput(t *testing.T) {
	v := scenarioValues()
	_ = Sign(v, testSecret)
	if v.Get("vnp_SecureHash") != "" {
		t.Error("Sign attached a hash to the caller's values")
	}
	if len(v) != 3 {
		t.Errorf("Sign changed the caller's values, now %d entries", len(v))
	}
}

func TestCanonical_SortedAndJoined(t *testing.T) {
	got := canonical(scenarioValues())
	want := "vnp_Amount=10000000&vnp_OrderInfo=Thanh toan don hang&vnp_TxnRef=ORDER123_20250101120000_AB12CD"
	if got != want {
		t.Errorf("canonical mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestCanonical_Idempotent(t *testing.T) {
	// Re-parsing the canonical string and canonicalizing again must
	// yield the same string: sorting and filtering are stable.
	first := canonical(scenarioValues())

	reparsed := url.Values{}
	for _, pair := range strings.Split(first, "&") {
		k, val, _ := strings.Cut(pair, "=")
		reparsed.Set(k, val)
	}
	second := canonical(reparsed)

	if first != second {
		t.Errorf("canonicalization not idempotent:\nfirst  %q\nsecond %q", first, second)
	}
}

func TestCanonical_ExcludesEmptyAndHashFields(t *testing.T) {
	v := scenarioValues()
	v.Set("vnp_BankCode", "")
	v.Set("vnp_SecureHash", "deadbeef")
	v.Set("vnp_SecureHashType", "HmacSHA512")

	got := canonical(v)
	if strings.Contains(got, "vnp_BankCode") {
		t.Error("empty field leaked into the canonical string")
	}
	if strings.Contains(got, "vnp_SecureHash") {
		t.Error("hash field leaked into the canonical string")
	}
}

func TestSign_EmptyFieldDoesNotChangeSignature(t *testing.T) {
	base := Sign(scenarioValues(), testSecret)

	withEmpty := scenarioValues()
	withEmpty.Set("vnp_BankCode", "")
	if got := Sign(withEmpty, testSecret); got != base {
		t.Error("adding an empty parameter changed the signature")
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	v := scenarioValues()
	v.Set("vnp_SecureHash", Sign(v, testSecret))

	if !Verify(v, testSecret) {
		t.Error("signature produced by Sign did not verify")
	}
}

func TestVerify_RejectsChangedAmount(t *testing.T) {
	v := scenarioValues()
	v.Set("vnp_SecureHash", Sign(v, testSecret))

	v.Set("vnp_Amount", "20000000")
	if Verify(v, testSecret) {
		t.Error("verification passed after the amount was changed")
	}
}

func TestVerify_DetectsSingleCharacterTamper(t *testing.T) {
	v := scenarioValues()
	v.Set("vnp_SecureHash", Sign(v, testSecret))

	ref := v.Get("vnp_TxnRef")
	v.Set("vnp_TxnRef", "X"+ref[1:])
	if Verify(v, testSecret) {
		t.Error("verification passed after one character of the reference was flipped")
	}
}

func TestVerify_MissingSignatureFailsClosed(t *testing.T) {
	// No claimed hash at all: must return false, never panic.
	if Verify(scenarioValues(), testSecret) {
		t.Error("verification passed with no claimed signature")
	}
}

func TestVerify_WrongKeyFails(t *testing.T) {
	v := scenarioValues()
	v.Set("vnp_SecureHash", Sign(v, testSecret))
	if Verify(v, "othersecret") {
		t.Error("verification passed with a different secret")
	}
}

func TestVerify_AcceptsUppercaseHex(t *testing.T) {
	v := scenarioValues()
	v.Set("vnp_SecureHash", strings.ToUpper(Sign(v, testSecret)))
	if !Verify(v, testSecret) {
		t.Error("verification rejected an uppercase hex signature")
	}
}

func TestBuildPaymentURL_SignedQueryVerifies(t *testing.T) {
	cfg := Config{HashSecret: testSecret, PayURL: "https://pay.example/vpcpay.html"}
	p := OutboundParams{
		Version:   "2.1.0",
		Command:   "pay",
		TmnCode:   "DEMO",
		CurrCode:  "VND",
		TxnRef:    "ORDER123_20250101120000_AB12CD",
		OrderInfo: "Thanh toan don hang",
		Amount:    10000000,
	}

	raw, err := BuildPaymentURL(cfg, p)
	if err != nil {
		t.Fatalf("BuildPaymentURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("unparseable redirect URL: %v", err)
	}
	if !Verify(u.Query(), testSecret) {
		t.Error("redirect URL query does not verify against its own signature")
	}
}

func TestBuildPaymentURL_MissingSecret(t *testing.T) {
	_, err := BuildPaymentURL(Config{PayURL: "https://pay.example"}, OutboundParams{TxnRef: "x"})
	if err == nil {
		t.Fatal("expected an error with no hash secret configured")
	}
}

func TestOutboundValues_OmitsBlankOptionalFields(t *testing.T) {
	p := OutboundParams{TxnRef: "ref", Amount: 100}
	v := p.Values()
	if _, ok := v["vnp_BankCode"]; ok {
		t.Error("blank bank code should not be rendered")
	}
	if v.Get("vnp_Amount") != "100" {
		t.Errorf("amount rendered as %q", v.Get("vnp_Amount"))
	}
}
