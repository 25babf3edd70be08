package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{" 2024-03-15 ", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}

	_, err := ParseDate("not a date")
	assert.Error(t, err)
}

func TestTruncatePeriod(t *testing.T) {
	// 2024-03-15 is a Friday.
	date := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   time.Time
	}{
		{PeriodDay, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{PeriodMonth, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := TruncatePeriod(date, tt.period)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	// Sunday belongs to the week starting the previous Monday.
	sunday := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)
	got, err := TruncatePeriod(sunday, PeriodWeek)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC).Equal(got))

	_, err = TruncatePeriod(date, "quarter")
	assert.Error(t, err)
}
