package quotes

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestQuoteNumber(t *testing.T) {
	at := time.Date(2026, 8, 29, 14, 3, 7, 0, time.UTC)

	assert.Equal(t, "QT-20260829-0001", quoteNumber(at, 1))
	assert.Equal(t, "QT-20260829-0042", quoteNumber(at, 42))
	assert.Equal(t, "QT-20260829-12345", quoteNumber(at, 12345), "the counter keeps growing past four digits")
}

func TestQuoteSequenceName(t *testing.T) {
	storeID := uuid.New()
	day1 := time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 0, 1, 0, 0, time.UTC)

	assert.NotEqual(t, quoteSequenceName(storeID, day1), quoteSequenceName(storeID, day2),
		"numbering restarts at midnight")
	assert.NotEqual(t, quoteSequenceName(storeID, day1), quoteSequenceName(uuid.New(), day1),
		"stores count independently")
}
