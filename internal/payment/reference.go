package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// suffixLen keeps the random token short; uniqueness within one second
// for one order only needs to beat accidental double-submits, and the
// store's unique constraint backstops the rest.
const suffixLen = 6

// NewReference builds a per-attempt reference id:
// orderID_timestamp_suffix, timestamp at second granularity. Repeated
// calls within the same second still differ in the suffix.
func NewReference(orderID string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:suffixLen]
	return fmt.Sprintf("%s_%s_%s", orderID, now.Format("20060102150405"), suffix)
}
