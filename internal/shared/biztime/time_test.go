package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		from   time.Time
		months int
		want   time.Time
	}{
		{"plain month", date(2025, 3, 15), 1, date(2025, 4, 15)},
		{"jan 31 to feb non leap", date(2025, 1, 31), 1, date(2025, 2, 28)},
		{"jan 31 to feb leap", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"quarter from nov 30", date(2025, 11, 30), 3, date(2026, 2, 28)},
		{"year rollover", date(2025, 12, 31), 1, date(2026, 1, 31)},
		{"aug 31 plus quarter", date(2025, 8, 31), 3, date(2025, 11, 30)},
		{"negative", date(2025, 3, 31), -1, date(2025, 2, 28)},
		{"negative across year", date(2025, 1, 15), -2, date(2024, 11, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.from, tt.months))
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 0, MonthsBetween(date(2024, 1, 31), date(2024, 1, 1)))
	assert.Equal(t, 1, MonthsBetween(date(2024, 1, 31), date(2024, 2, 29)))
	assert.Equal(t, 13, MonthsBetween(date(2023, 12, 31), date(2025, 1, 1)))
	assert.Equal(t, -2, MonthsBetween(date(2025, 1, 15), date(2024, 11, 15)))
}

func TestAddYears_LeapDay(t *testing.T) {
	assert.Equal(t, date(2025, 2, 28), AddYears(date(2024, 2, 29), 1))
	assert.Equal(t, date(2028, 2, 29), AddYears(date(2024, 2, 29), 4))
}

func TestDayBoundaries(t *testing.T) {
	in := time.Date(2025, 6, 1, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), StartOfDayUTC(in))
	assert.Equal(t, time.Date(2025, 6, 1, 23, 59, 59, 999999999, time.UTC), EndOfDayUTC(in))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("28/02/2025")
	assert.Error(t, err)
}
