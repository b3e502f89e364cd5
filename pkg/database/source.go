package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"delupo-stats/pkg/calendar"
	"delupo-stats/pkg/models"
	"delupo-stats/pkg/source"
)

// Source sert les endpoints dérivables de la table d'événements : cohort, retention, new-vs-returning.
type Source struct {
	db    *sql.DB
	table string
	loc   *time.Location
}

// NewSource ; loc sert au découpage en mois quand la requête ne précise pas de fuseau.
func NewSource(db *sql.DB, table string, loc *time.Location) *Source {
	if table == "" {
		table = DefaultTable
	}
	return &Source{db: db, table: table, loc: loc}
}

// Fetch implémente source.Source. start et end (inclus) sont obligatoires.
func (s *Source) Fetch(ctx context.Context, endpoint source.Endpoint, params source.Params) (models.RawPayload, error) {
	var build func([]OrderEvent, time.Time, time.Time, *time.Location) models.RawPayload
	switch endpoint {
	case source.Cohort:
		build = CohortPayload
	case source.Retention:
		build = RetentionPayload
	case source.NewVsReturning:
		build = NewVsReturningPayload
	default:
		return nil, fmt.Errorf("%s: %w", endpoint, source.ErrUnsupported)
	}

	loc := s.loc
	if tz := params["timezone"]; tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("timezone: %w", err)
		}
		loc = l
	}
	from, err := calendar.ParseDate(params["start"], loc)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := calendar.ParseDate(params["end"], loc)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	if end.Before(from) {
		return nil, fmt.Errorf("end < start")
	}
	to := end.AddDate(0, 0, 1)

	events, err := LoadOrderEvents(ctx, s.db, s.table, from, to)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", endpoint, err)
	}
	return build(events, from, to, loc), nil
}
