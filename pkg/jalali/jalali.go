// Package jalali converts between the Gregorian calendar (the wire format of
// the API) and the Jalali (Persian solar) calendar used for display and input.
//
// The conversion follows the 33-year leap-cycle algorithm of Khayam's calendar
// reform, valid for Jalali years 1 through 3177. All functions are pure and
// safe for concurrent use.
package jalali

import (
	"fmt"
	"time"
)

// Date is a Jalali calendar date.
type Date struct {
	Year  int
	Month int // 1..12
	Day   int // 1..31
}

// GregorianDate is a Gregorian calendar date.
type GregorianDate struct {
	Year  int
	Month int // 1..12
	Day   int // 1..31
}

// breaks lists the Jalali years in which the length of the leap cycle changes.
var breaks = [...]int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181, 1210,
	1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

var monthNames = [12]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

// ToJalali converts a valid Gregorian date to its Jalali equivalent.
// Behavior is undefined for inputs that do not form a real Gregorian date.
func ToJalali(gy, gm, gd int) Date {
	return d2j(g2d(gy, gm, gd))
}

// ToGregorian converts a valid Jalali date to its Gregorian equivalent.
// It is the exact inverse of ToJalali.
func ToGregorian(jy, jm, jd int) GregorianDate {
	return d2g(j2d(jy, jm, jd))
}

// MonthLength returns the number of days in the given Jalali month:
// 31 for months 1-6, 30 for months 7-11, and 29 or 30 for month 12
// depending on whether the year is a leap year.
func MonthLength(jy, jm int) int {
	if jm <= 6 {
		return 31
	}
	if jm <= 11 {
		return 30
	}
	if IsLeapYear(jy) {
		return 30
	}
	return 29
}

// IsLeapYear reports whether the given Jalali year is a leap year.
func IsLeapYear(jy int) bool {
	leap, _, _ := jalCal(jy)
	return leap == 0
}

// Today returns the current system date converted to Jalali.
func Today() Date {
	now := time.Now()
	return ToJalali(now.Year(), int(now.Month()), now.Day())
}

// TodayYearMonth returns the Jalali year and month of the current system date.
func TodayYearMonth() (year, month int) {
	d := Today()
	return d.Year, d.Month
}

// FormatISO converts a Gregorian ISO date string ("YYYY-MM-DD") to the
// zero-padded Jalali display form "YYYY/MM/DD". Input that does not look like
// an ISO date is returned unchanged since it only feeds display.
func FormatISO(iso string) string {
	var gy, gm, gd int
	if n, err := fmt.Sscanf(iso, "%d-%d-%d", &gy, &gm, &gd); err != nil || n != 3 || gy == 0 || gm == 0 || gd == 0 {
		return iso
	}
	j := ToJalali(gy, gm, gd)
	return fmt.Sprintf("%d/%02d/%02d", j.Year, j.Month, j.Day)
}

// ToGregorianISO converts a Jalali date to the zero-padded Gregorian ISO wire
// format "YYYY-MM-DD".
func ToGregorianISO(jy, jm, jd int) string {
	g := ToGregorian(jy, jm, jd)
	return fmt.Sprintf("%04d-%02d-%02d", g.Year, g.Month, g.Day)
}

// MonthName returns the Persian name of a Jalali month (1..12). Out-of-range
// input yields a generic "ماه N" label rather than panicking.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return fmt.Sprintf("ماه %d", m)
	}
	return monthNames[m-1]
}

// jalCal determines leap-year status and the Gregorian alignment of a Jalali
// year: leap is the number of years since the last leap year (0 means jy is a
// leap year), gy is the Gregorian year of the first day of jy, and march is
// the March day of that Gregorian year on which jy starts.
func jalCal(jy int) (leap, gy, march int) {
	bl := len(breaks)
	gy = jy + 621
	leapJ := -14
	jp := breaks[0]

	// Find the limiting years for the Jalali year jy.
	var jump int
	for i := 1; i < bl; i++ {
		jm := breaks[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + jump%33/4
		jp = jm
	}
	n := jy - jp

	// Number of leap years from AD 621 to the beginning of the current
	// Jalali year in the Jalali calendar.
	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}

	// Leap years from AD 621 to the start of the Gregorian year gy.
	leapG := gy/4 - (gy/100+1)*3/4 - 150

	march = 20 + leapJ - leapG

	// Find how many years have passed since the last leap year.
	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap = ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}
	return leap, gy, march
}

// j2d converts a Jalali date to its Julian day number.
func j2d(jy, jm, jd int) int {
	_, gy, march := jalCal(jy)
	return g2d(gy, 3, march) + (jm-1)*31 - jm/7*(jm-7) + jd - 1
}

// d2j converts a Julian day number to a Jalali date.
func d2j(jdn int) Date {
	gy := d2g(jdn).Year
	jy := gy - 621
	leap, _, march := jalCal(jy)
	k := jdn - g2d(gy, 3, march)
	if k >= 0 {
		if k <= 185 {
			return Date{Year: jy, Month: 1 + k/31, Day: k%31 + 1}
		}
		k -= 186
	} else {
		jy--
		k += 179
		if leap == 1 {
			k++
		}
	}
	return Date{Year: jy, Month: 7 + k/30, Day: k%30 + 1}
}

// g2d converts a Gregorian date to its Julian day number.
func g2d(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 + (153*((gm+9)%12)+2)/5 + gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

// d2g converts a Julian day number to a Gregorian date.
func d2g(jdn int) GregorianDate {
	j := 4*jdn + 139361631
	j += (4*jdn+183187720)/146097*3/4*4 - 3908
	i := j%1461/4*5 + 308
	gd := i%153/5 + 1
	gm := i/153%12 + 1
	gy := j/1461 - 100100 + (8-gm)/6
	return GregorianDate{Year: gy, Month: gm, Day: gd}
}
