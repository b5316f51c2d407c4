package manager

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestExpirationIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	em := &ExpirationManagerImpl{now: fixedClock(now)}

	past := sampleRecord("old.pdf")
	past.Expires = strconv.FormatInt(now.Add(-time.Hour).UnixMilli(), 10)
	assert.True(t, em.IsExpired(past))

	future := sampleRecord("fresh.pdf")
	future.Expires = strconv.FormatInt(now.Add(time.Hour).UnixMilli(), 10)
	assert.False(t, em.IsExpired(future))
}

func TestExpirationUnknownExpiryNeverExpires(t *testing.T) {
	em := NewExpirationManager()

	record := sampleRecord("report.pdf")
	record.Expires = ""
	assert.False(t, em.IsExpired(record))

	record.Expires = "not-a-number"
	assert.False(t, em.IsExpired(record))
}

func TestExpirationTimeUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	em := &ExpirationManagerImpl{now: fixedClock(now)}

	record := sampleRecord("report.pdf")
	record.Expires = strconv.FormatInt(now.Add(90*time.Minute).UnixMilli(), 10)

	remaining, ok := em.TimeUntilExpiration(record)
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, remaining)

	record.Expires = ""
	_, ok = em.TimeUntilExpiration(record)
	assert.False(t, ok)
}

func TestExpirationFormatExpiry(t *testing.T) {
	em := NewExpirationManager()

	record := sampleRecord("report.pdf")
	expires := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record.Expires = strconv.FormatInt(expires.UnixMilli(), 10)
	formatted := em.FormatExpiry(record)
	assert.NotEqual(t, "unknown", formatted)
	assert.Contains(t, formatted, "2025")

	record.Expires = "garbage"
	assert.Equal(t, "unknown", em.FormatExpiry(record))
}
