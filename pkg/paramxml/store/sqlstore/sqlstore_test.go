package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDollar(t *testing.T) {
	got := Dollar("INSERT INTO t (a, b) VALUES (?, ?) RETURNING id WHERE c = ?")
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2) RETURNING id WHERE c = $3", got)
	assert.Equal(t, "a = ?", Question("a = ?"))
}

func TestTimestampScan(t *testing.T) {
	want := time.Date(2025, 2, 3, 4, 5, 6, 700, time.UTC)

	for _, src := range []any{
		TextTime(want),
		[]byte(TextTime(want).(string)),
		want.In(time.FixedZone("MSK", 3*3600)),
	} {
		var got time.Time
		require.NoError(t, (timestamp{&got}).Scan(src), "Scan(%v)", src)
		assert.True(t, got.Equal(want), "Scan(%v) = %v", src, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	var got time.Time
	assert.Error(t, (timestamp{&got}).Scan(42))
}

func TestTextTimeSortsChronologically(t *testing.T) {
	a := TextTime(time.Date(2025, 1, 1, 0, 0, 5, 100_000_000, time.UTC)).(string)
	b := TextTime(time.Date(2025, 1, 1, 0, 0, 5, 120_000_000, time.UTC)).(string)
	assert.Less(t, a, b)
}
