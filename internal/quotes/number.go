package quotes

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// sequenceTTL keeps a daily quote counter alive comfortably past midnight.
const sequenceTTL = 48 * time.Hour

// quoteNumber renders QT-YYYYMMDD-NNNN. The counter pads to four digits and
// keeps growing past 9999.
func quoteNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("QT-%s-%04d", now.Format("20060102"), seq)
}

// quoteSequenceName scopes the daily counter to one store and one calendar
// day, so numbering restarts at 0001 every morning.
func quoteSequenceName(storeID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("quotes:%s:%s", storeID, now.Format("20060102"))
}
