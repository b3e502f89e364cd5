// Package calendar calcule les bornes de périodes (jour, semaine ISO débutant le lundi, mois)
// dans un fuseau explicite, et complète les séries temporelles.
package calendar

import (
	"errors"
	"strings"
	"time"

	"delupo-stats/pkg/models"
)

// KeyLayout est le format canonique d'une clé de période.
const KeyLayout = "2006-01-02"

var ErrEmptyDate = errors.New("date vide")

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// ParseDate accepte "2006-01-02" (minuit dans loc) ou un horodatage RFC3339 ramené dans loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	loc = location(loc)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrEmptyDate
	}
	if t, err := time.ParseInLocation(KeyLayout, raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// naiveLayouts : horodatages sans décalage, lus dans loc.
var naiveLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// ParseKey lit une clé de période renvoyée par l'API. Un horodatage avec décalage (ou Z)
// est une clé déjà calculée : il reste dans son propre décalage. Une date nue ou un
// horodatage sans décalage est une date calendaire, lue dans loc.
func ParseKey(raw string, loc *time.Location) (time.Time, error) {
	loc = location(loc)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrEmptyDate
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(KeyLayout, raw, loc); err == nil {
		return t, nil
	}
	var err error
	for _, layout := range naiveLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// DayKey canonicalise une clé de période au jour ; "" si illisible.
func DayKey(raw string, loc *time.Location) string {
	t, err := ParseKey(raw, loc)
	if err != nil {
		return ""
	}
	return t.Format(KeyLayout)
}

// StartOf ramène t au début de sa période dans loc.
func StartOf(t time.Time, g models.Granularity, loc *time.Location) time.Time {
	t = t.In(location(loc))
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch g {
	case models.Week:
		// lundi = 0
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.Month:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	default:
		return day
	}
}

// PeriodKey renvoie la clé canonique de la période contenant t.
func PeriodKey(t time.Time, g models.Granularity, loc *time.Location) string {
	return StartOf(t, g, loc).Format(KeyLayout)
}

func next(t time.Time, g models.Granularity) time.Time {
	switch g {
	case models.Week:
		return t.AddDate(0, 0, 7)
	case models.Month:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Periods renvoie une clé par période de [start, end], bornes incluses, en ordre croissant.
func Periods(start, end time.Time, g models.Granularity, loc *time.Location) []string {
	cur := StartOf(start, g, loc)
	last := StartOf(end, g, loc)
	var out []string
	for !cur.After(last) {
		out = append(out, cur.Format(KeyLayout))
		cur = next(cur, g)
	}
	return out
}
