package payload

import (
	"github.com/samber/lo"

	"delupo-stats/pkg/models"
)

// PeriodFields et ValueFields sont lus dans cet ordre ; le premier présent gagne.
var (
	PeriodFields = []string{"date", "day", "week", "month", "period", "createdAt"}
	ValueFields  = []string{"revenue", "amount", "total", "value", "sales", "orders", "count"}
)

// NormalizeSeries convertit la série détectée en points {period, value}, dans l'ordre d'entrée.
// Les entrées sans période exploitable sont écartées.
func NormalizeSeries(p models.RawPayload) []models.SeriesPoint {
	raw := FindSeries(p)
	out := make([]models.SeriesPoint, 0, len(raw))
	for _, entry := range raw {
		if pt, ok := normalizeEntry(entry); ok {
			out = append(out, pt)
		}
	}
	return out
}

func normalizeEntry(entry any) (models.SeriesPoint, bool) {
	if tuple, ok := entry.([]any); ok {
		return normalizeTuple(tuple)
	}
	rec, ok := Record(entry)
	if !ok {
		return models.SeriesPoint{}, false
	}

	period, ok := firstPeriod(rec)
	if !ok {
		return models.SeriesPoint{}, false
	}
	value, field := firstValue(rec)
	if lo.Contains(MoneyFields, field) {
		value /= 100
	}
	return models.SeriesPoint{Period: period, Value: value}, true
}

// tuple [period, value] : valeur brute, jamais en centimes
func normalizeTuple(tuple []any) (models.SeriesPoint, bool) {
	if len(tuple) == 0 || isBlank(tuple[0]) {
		return models.SeriesPoint{}, false
	}
	period := Text(tuple[0])
	if period == "" {
		return models.SeriesPoint{}, false
	}
	var value float64
	if len(tuple) > 1 {
		value = Float(tuple[1])
	}
	return models.SeriesPoint{Period: period, Value: value}, true
}

func firstPeriod(rec map[string]any) (string, bool) {
	for _, key := range PeriodFields {
		v, present := rec[key]
		if !present || isBlank(v) {
			continue
		}
		if s := Text(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// firstValue ignore les champs nuls ; renvoie 0 et "" si aucun champ n'est renseigné.
func firstValue(rec map[string]any) (float64, string) {
	for _, key := range ValueFields {
		v, present := rec[key]
		if !present || v == nil {
			continue
		}
		return Float(v), key
	}
	return 0, ""
}
