package jalali

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJalali(t *testing.T) {
	tests := []struct {
		gy, gm, gd int
		want       Date
	}{
		{1981, 8, 17, Date{1360, 5, 26}},
		{2013, 1, 10, Date{1391, 10, 21}},
		{2014, 8, 4, Date{1393, 5, 13}},
		{2016, 4, 11, Date{1395, 1, 23}},
		{2024, 3, 20, Date{1403, 1, 1}}, // Nowruz
		{2024, 3, 19, Date{1402, 12, 29}},
		{2025, 3, 20, Date{1403, 12, 30}}, // leap year, Esfand has 30 days
		{2025, 3, 21, Date{1404, 1, 1}},
	}

	for _, tt := range tests {
		got := ToJalali(tt.gy, tt.gm, tt.gd)
		assert.Equal(t, tt.want, got, "ToJalali(%d, %d, %d)", tt.gy, tt.gm, tt.gd)
	}
}

func TestToGregorian(t *testing.T) {
	tests := []struct {
		jy, jm, jd int
		want       GregorianDate
	}{
		{1360, 5, 26, GregorianDate{1981, 8, 17}},
		{1391, 10, 21, GregorianDate{2013, 1, 10}},
		{1403, 1, 1, GregorianDate{2024, 3, 20}},
		{1403, 12, 30, GregorianDate{2025, 3, 20}},
	}

	for _, tt := range tests {
		got := ToGregorian(tt.jy, tt.jm, tt.jd)
		assert.Equal(t, tt.want, got, "ToGregorian(%d, %d, %d)", tt.jy, tt.jm, tt.jd)
	}
}

func TestRoundTrip(t *testing.T) {
	// Every Gregorian day across 150 years must survive the round trip.
	start := time.Date(1950, 1, 1, 12, 0, 0, 0, time.UTC)
	end := time.Date(2100, 12, 31, 12, 0, 0, 0, time.UTC)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		gy, gm, gd := d.Year(), int(d.Month()), d.Day()
		j := ToJalali(gy, gm, gd)

		require.GreaterOrEqual(t, j.Month, 1, "month for %s", d.Format("2006-01-02"))
		require.LessOrEqual(t, j.Month, 12, "month for %s", d.Format("2006-01-02"))
		require.GreaterOrEqual(t, j.Day, 1, "day for %s", d.Format("2006-01-02"))
		require.LessOrEqual(t, j.Day, MonthLength(j.Year, j.Month), "day for %s", d.Format("2006-01-02"))

		g := ToGregorian(j.Year, j.Month, j.Day)
		require.Equal(t, GregorianDate{gy, gm, gd}, g, "round trip for %s", d.Format("2006-01-02"))
	}
}

func TestIsLeapYear(t *testing.T) {
	leaps := map[int]bool{
		1387: true,
		1391: true,
		1393: false,
		1394: false,
		1395: true,
		1402: false,
		1403: true,
		1404: false,
	}
	for jy, want := range leaps {
		assert.Equal(t, want, IsLeapYear(jy), "IsLeapYear(%d)", jy)
	}
}

func TestMonthLength(t *testing.T) {
	tests := []struct {
		jy, jm, want int
	}{
		{1393, 1, 31},
		{1393, 4, 31},
		{1393, 6, 31},
		{1393, 7, 30},
		{1393, 11, 30},
		{1393, 12, 29},
		{1395, 12, 30},
		{1403, 12, 30},
		{1404, 12, 29},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthLength(tt.jy, tt.jm), "MonthLength(%d, %d)", tt.jy, tt.jm)
	}
}

func TestFormatISO(t *testing.T) {
	assert.Equal(t, "1403/01/01", FormatISO("2024-03-20")) // Nowruz boundary
	assert.Equal(t, "1404/01/01", FormatISO("2025-03-21"))
	assert.Equal(t, "1391/10/21", FormatISO("2013-01-10"))

	// Malformed input is passed through untouched.
	assert.Equal(t, "not-a-date", FormatISO("not-a-date"))
	assert.Equal(t, "", FormatISO(""))
}

func TestToGregorianISO(t *testing.T) {
	assert.Equal(t, "2024-03-20", ToGregorianISO(1403, 1, 1))
	assert.Equal(t, "2013-01-10", ToGregorianISO(1391, 10, 21))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "فروردین", MonthName(1))
	assert.Equal(t, "اسفند", MonthName(12))

	// Out of range falls back to a generic label instead of panicking.
	assert.Equal(t, "ماه 0", MonthName(0))
	assert.Equal(t, "ماه 13", MonthName(13))
}

func TestToday(t *testing.T) {
	now := time.Now()
	want := ToJalali(now.Year(), int(now.Month()), now.Day())

	assert.Equal(t, want, Today())

	y, m := TodayYearMonth()
	assert.Equal(t, want.Year, y)
	assert.Equal(t, want.Month, m)
}
