package payment

import (
	"strings"
	"testing"
	"time"
)

func TestNewReference_Format(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ref := NewReference("ORDER123", at)

	parts := strings.Split(ref, "_")
	if len(parts) != 3 {
		t.Fatalf("expected orderID_timestamp_suffix, got %q", ref)
	}
	if parts[0] != "ORDER123" {
		t.Errorf("order id part: got %q", parts[0])
	}
	if parts[1] != "20250101120000" {
		t.Errorf("timestamp part: got %q", parts[1])
	}
	if len(parts[2]) != suffixLen {
		t.Errorf("suffix length: got %d, want %d", len(parts[2]), suffixLen)
	}
}

func TestNewReference_DistinctWithinSameSecond(t *testing.T) {
	// 100 calls with a frozen clock: the random suffix alone must keep
	// them apart.
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	seen := make(map[string]bool, 100)
	for i := 0; i < 100; i++ {
		ref := NewReference("ORDER123", at)
		if seen[ref] {
			t.Fatalf("duplicate reference after %d calls: %s", i+1, ref)
		}
		seen[ref] = true
	}
}
