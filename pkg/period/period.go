// Package period handles "competência" values: the year-month a payroll
// document covers, canonicalized as a 6-digit YYYYMM string.
package period

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reCanonical = regexp.MustCompile(`^\d{6}$`)
	reDashed    = regexp.MustCompile(`^\d{4}-\d{2}$`)
	reSlashed   = regexp.MustCompile(`^\d{2}/\d{4}$`)
	reDigits    = regexp.MustCompile(`\D`)
)

// Normalize converts any supported period representation to YYYYMM.
// Accepts "YYYYMM", "YYYY-MM" and "MM/YYYY"; anything else is reduced to
// its digits, matching the lenient behavior the backend tolerates.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	switch {
	case reCanonical.MatchString(s):
		return s
	case reDashed.MatchString(s):
		return strings.ReplaceAll(s, "-", "")
	case reSlashed.MatchString(s):
		parts := strings.SplitN(s, "/", 2)
		mm, yyyy := parts[0], parts[1]
		if len(mm) < 2 {
			mm = "0" + mm
		}
		return yyyy + mm
	default:
		return reDigits.ReplaceAllString(s, "")
	}
}

// Valid reports whether s is a canonical 6-digit period.
func Valid(s string) bool {
	return reCanonical.MatchString(s)
}

// Make builds a canonical period from a year and a month number.
func Make(year int, month int) string {
	return fmt.Sprintf("%04d%02d", year, month)
}

// Label renders a canonical period as "YYYY-MM" for display. Values that are
// not canonical are returned untouched.
func Label(s string) string {
	if !reCanonical.MatchString(s) {
		return s
	}
	return s[:4] + "-" + s[4:]
}

// Item is one available competência returned by a discovery endpoint.
type Item struct {
	Year  int
	Month int
}

// Years lists the distinct years of items, newest first.
func Years(items []Item) []int {
	seen := make(map[int]struct{}, len(items))
	years := make([]int, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.Year]; ok {
			continue
		}
		seen[it.Year] = struct{}{}
		years = append(years, it.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Months lists the distinct months available within year, newest first.
func Months(items []Item, year int) []int {
	seen := make(map[int]struct{})
	months := make([]int, 0, 12)
	for _, it := range items {
		if it.Year != year {
			continue
		}
		if _, ok := seen[it.Month]; ok {
			continue
		}
		seen[it.Month] = struct{}{}
		months = append(months, it.Month)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(months)))
	return months
}

// Year extracts the numeric year of a canonical or year-only period value.
func Year(s string) int {
	s = Normalize(s)
	if len(s) < 4 {
		return 0
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0
	}
	return y
}
