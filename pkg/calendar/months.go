package calendar

import (
	"fmt"
	"strings"
	"time"
)

var monthAbbr = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// monthLayout : "MMYYYY", format des drapeaux --from-month/--to-month.
const monthLayout = "012006"

// ParseMonth lit "MMYYYY" et renvoie le 1er du mois à minuit dans loc.
func ParseMonth(mmyyyy string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(monthLayout, strings.TrimSpace(mmyyyy), location(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("mois %q: format attendu MMYYYY (ex: 012025)", mmyyyy)
	}
	return t, nil
}

// MonthsBetween renvoie le 1er de chaque mois de [start, end], bornes incluses.
func MonthsBetween(start, end time.Time, loc *time.Location) []time.Time {
	loc = location(loc)
	start, end = start.In(loc), end.In(loc)
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, loc)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// FormatMonth -> "MM/YYYY"
func FormatMonth(t time.Time) string {
	return t.Format("01/2006")
}

// MonthKey -> "YYYY-MM" (voir ParseKey). "" si la date est illisible.
func MonthKey(raw string, loc *time.Location) string {
	t, err := ParseKey(raw, loc)
	if err != nil {
		return ""
	}
	return t.Format("2006-01")
}

// MonthLabel -> "Jan/2024" ; "-" si la date est absente ou illisible.
func MonthLabel(raw string, loc *time.Location) string {
	t, err := ParseKey(raw, loc)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%s/%d", monthAbbr[t.Month()-1], t.Year())
}
