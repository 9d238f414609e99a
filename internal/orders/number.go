package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// sequenceTTL keeps the daily counter alive comfortably past midnight so a
// slow clock on one node cannot reset a sequence still in use.
const sequenceTTL = 48 * time.Hour

// retailOrderNumber formats ORD-YYYY-MMDD-NNNN from the daily sequence.
func retailOrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("2006-0102"), seq)
}

// b2bOrderNumber formats PO-YYYYMMDD-HHMMSS from the checkout instant.
func b2bOrderNumber(now time.Time) string {
	return fmt.Sprintf("PO-%s", now.Format("20060102-150405"))
}

// orderSequenceName scopes the retail counter to one store and one calendar
// day, so numbering restarts at 0001 every midnight.
func orderSequenceName(storeID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("orders:%s:%s", storeID, now.Format("20060102"))
}
