package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Cutoff is an inclusive (year, month) lower bound.
type Cutoff struct {
	Year  int
	Month time.Month
}

// ParseCutoff parses a YYYYMM string such as "202306".
func ParseCutoff(s string) (Cutoff, error) {
	if len(s) != 6 {
		return Cutoff{}, NewInputError("start date", s, "expected YYYYMM")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return Cutoff{}, NewInputError("start date", s, "expected YYYYMM")
		}
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[4:])
	if month < 1 || month > 12 {
		return Cutoff{}, NewInputError("start date", s, "month must be between 01 and 12")
	}
	return Cutoff{Year: year, Month: time.Month(month)}, nil
}

// Includes reports whether t falls in the cutoff month or later, comparing
// (year, month) in t's own location.
func (c Cutoff) Includes(t time.Time) bool {
	if t.Year() != c.Year {
		return t.Year() > c.Year
	}
	return t.Month() >= c.Month
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}
