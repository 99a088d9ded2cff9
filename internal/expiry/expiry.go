package expiry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var defaultLoc = time.UTC

// SetDefaultExpiryLocation sets the default time location for expiry calculations (fallback UTC).
func SetDefaultExpiryLocation(loc *time.Location) {
	if loc != nil {
		defaultLoc = loc
	}
}

// Date is a card expiry month.
type Date struct {
	Year  int
	Month time.Month
}

// String formats the date the way the processor reports it: M/yyyy.
func (d Date) String() string {
	return fmt.Sprintf("%d/%04d", int(d.Month), d.Year)
}

// Parse accepts the processor's "M/yyyy" (also "MM/yyyy") and the card face
// "MM/YY" forms.
func Parse(in string) (Date, error) {
	s := strings.TrimSpace(in)
	month, year, ok := strings.Cut(s, "/")
	if !ok {
		return Date{}, fmt.Errorf("expiry %q must be M/yyyy or MM/YY", in)
	}
	if !digits(month) || !digits(year) || len(month) > 2 {
		return Date{}, fmt.Errorf("expiry %q must be digits", in)
	}

	mm, _ := strconv.Atoi(month)
	if mm < 1 || mm > 12 {
		return Date{}, fmt.Errorf("expiry month must be 1..12")
	}

	var yyyy int
	switch len(year) {
	case 2:
		yy, _ := strconv.Atoi(year)
		yyyy = 2000 + yy
	case 4:
		yyyy, _ = strconv.Atoi(year)
	default:
		return Date{}, fmt.Errorf("expiry year must be YY or yyyy")
	}
	return Date{Year: yyyy, Month: time.Month(mm)}, nil
}

// EndOfMonth returns the last instant of the expiry month in loc.
func (d Date) EndOfMonth(loc *time.Location) time.Time {
	if loc == nil {
		loc = defaultLoc
	}
	// First day of next month
	firstNext := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	return firstNext.Add(-time.Nanosecond)
}

// IsExpired reports whether time 'at' is strictly after the end of the expiry month in loc.
func IsExpired(expiry string, at time.Time, loc *time.Location) (bool, error) {
	d, err := Parse(expiry)
	if err != nil {
		return false, err
	}
	end := d.EndOfMonth(loc)
	return at.In(end.Location()).After(end), nil
}

// RenewalDue returns true if 'at' is within [end-windowDays, end] inclusive.
func RenewalDue(expiry string, at time.Time, loc *time.Location, windowDays int) (bool, error) {
	d, err := Parse(expiry)
	if err != nil {
		return false, err
	}
	end := d.EndOfMonth(loc)
	start := end.AddDate(0, 0, -windowDays)
	at = at.In(end.Location())
	if (at.Equal(start) || at.After(start)) && (at.Before(end) || at.Equal(end)) {
		return true, nil
	}
	return false, nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
