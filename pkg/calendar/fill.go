package calendar

import (
	"time"

	"delupo-stats/pkg/logging"
	"delupo-stats/pkg/models"
)

// FillGaps complète la série sur [start, end] : une entrée par période, 0 pour les trous.
//
// Une série vide reste vide. Une plage absente ou illisible renvoie la série telle quelle
// (le cas est journalisé).
func FillGaps(series []models.SeriesPoint, start, end string, g models.Granularity, loc *time.Location) []models.SeriesPoint {
	if len(series) == 0 {
		return []models.SeriesPoint{}
	}
	log := logging.With("calendar")
	if start == "" || end == "" {
		log.Debug().Str("start", start).Str("end", end).Msg("plage de dates absente, série non complétée")
		return series
	}

	from, errStart := ParseDate(start, loc)
	to, errEnd := ParseDate(end, loc)
	if errStart != nil || errEnd != nil {
		log.Warn().
			Str("start", start).
			Str("end", end).
			AnErr("start_error", errStart).
			AnErr("end_error", errEnd).
			Msg("plage de dates illisible, série non complétée")
		return series
	}

	byPeriod := make(map[string]models.SeriesPoint, len(series))
	// en cas de doublon, le dernier point gagne
	for _, pt := range series {
		byPeriod[pt.Period] = pt
	}

	periods := Periods(from, to, g, loc)
	out := make([]models.SeriesPoint, 0, len(periods))
	for _, key := range periods {
		if pt, ok := byPeriod[key]; ok {
			out = append(out, pt)
			continue
		}
		out = append(out, models.SeriesPoint{Period: key, Value: 0})
	}
	return out
}
