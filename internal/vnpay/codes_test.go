package vnpay

import "testing"

func TestIsSuccess(t *testing.T) {
	if !IsSuccess("00") {
		t.Error(`"00" must be the success code`)
	}
	for _, code := range []string{"07", "24", "51", "99", ""} {
		if IsSuccess(code) {
			t.Errorf("code %q wrongly treated as success", code)
		}
	}
}

func TestCodeDescription_KnownCodes(t *testing.T) {
	if got := CodeDescription("51"); got != "Insufficient funds" {
		t.Errorf("code 51: got %q", got)
	}
	if got := CodeDescription("24"); got != "Transaction cancelled by customer" {
		t.Errorf("code 24: got %q", got)
	}
}

func TestCodeDescription_UnknownCodeStillReadable(t *testing.T) {
	if got := CodeDescription("XX"); got == "" {
		t.Error("unknown codes must map to a non-empty description")
	}
}
