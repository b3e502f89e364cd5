// Package payload localise et normalise les séries dans les réponses de l'API de métriques,
// dont la forme varie d'un endpoint (et d'une version) à l'autre.
package payload

import (
	"strings"

	"delupo-stats/pkg/format"
	"delupo-stats/pkg/models"
)

// accessor est une stratégie de lecture : un chemin de clés qui doit mener à un tableau.
type accessor struct {
	name string
	path []string
}

func (a accessor) lookup(p models.RawPayload) ([]any, bool) {
	return Array(p, a.path...)
}

// SeriesCandidates : champs candidats, par ordre de priorité. Le premier tableau trouvé gagne.
var SeriesCandidates = []accessor{
	{name: "daily", path: []string{"daily"}},
	{name: "dailySales", path: []string{"dailySales"}},
	{name: "salesDaily", path: []string{"salesDaily"}},
	{name: "ordersByDay", path: []string{"ordersByDay"}},
	{name: "byDay", path: []string{"byDay"}},
	{name: "series", path: []string{"series"}},
	{name: "data", path: []string{"data"}},
	{name: "orders.daily", path: []string{"orders", "daily"}},
	{name: "orders.byDay", path: []string{"orders", "byDay"}},
}

// MoneyFields : champs exprimés en centimes.
var MoneyFields = []string{"revenue", "amount", "total", "sales"}

// FindSeries renvoie le premier tableau candidat, ou nil. Ne panique jamais.
func FindSeries(p models.RawPayload) []any {
	arr, _ := findSeries(p)
	return arr
}

func findSeries(p models.RawPayload) ([]any, string) {
	if p == nil {
		return nil, ""
	}
	for _, c := range SeriesCandidates {
		if arr, ok := c.lookup(p); ok {
			return arr, c.name
		}
	}
	return nil, ""
}

// SeriesField renvoie le nom du champ candidat retenu ("" si aucun).
func SeriesField(p models.RawPayload) string {
	_, name := findSeries(p)
	return name
}

// Classify : un échantillon portant un champ monétaire rend la série monétaire.
// Les tuples [period, value] sont des comptages.
func Classify(sample any) models.ValueKind {
	rec, ok := Record(sample)
	if !ok {
		return models.KindCount
	}
	for _, key := range MoneyFields {
		if _, present := rec[key]; present {
			return models.KindMoney
		}
	}
	return models.KindCount
}

var periodAdjectives = map[models.Granularity]string{
	models.Day:   "Daily",
	models.Week:  "Weekly",
	models.Month: "Monthly",
}

// Label : six variantes, granularité × (revenue|orders).
func Label(kind models.ValueKind, g models.Granularity) string {
	adj, ok := periodAdjectives[g]
	if !ok {
		adj = periodAdjectives[models.Day]
	}
	if kind == models.KindMoney {
		return adj + " revenue"
	}
	return adj + " orders"
}

// DetectValueMeta calcule une fois par payload le libellé et le formateur.
// Si g est vide, le champ groupBy du payload est utilisé.
func DetectValueMeta(p models.RawPayload, g models.Granularity) models.ValueMeta {
	if g == "" {
		g = models.ParseGranularity(Text(p["groupBy"]))
	}
	kind := models.KindMoney
	if len(NormalizeSeries(p)) > 0 {
		kind = Classify(FindSeries(p)[0])
	}
	meta := models.ValueMeta{Label: Label(kind, g), Kind: kind, Format: format.Number}
	if kind == models.KindMoney {
		meta.Format = format.Currency
	}
	return meta
}

// isBlank : le test de vérité d'un identifiant de période.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
