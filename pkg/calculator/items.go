// Package calculator transforme les listes d'items des endpoints de métriques en tableaux
// prêts à afficher : groupes UTM et coupons, matrice de cohortes, rétention, classements.
//
// Toutes les fonctions sont pures : entrée absente ou mal formée → résultat vide, jamais d'erreur.
package calculator

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"delupo-stats/pkg/models"
	"delupo-stats/pkg/payload"
)

// Items renvoie le tableau p[key] ("items", "topCustomers", ...) ou nil.
func Items(p models.RawPayload, key string) []any {
	arr, ok := payload.Array(p, key)
	if !ok {
		return nil
	}
	return arr
}

// records ne garde que les items objets.
func records(items []any) []map[string]any {
	return lo.FilterMap(items, func(item any, _ int) (map[string]any, bool) {
		return payload.Record(item)
	})
}

// Strings convertit un tableau JSON en liste de textes non vides.
func Strings(items []any) []string {
	return lo.FilterMap(items, func(item any, _ int) (string, bool) {
		s := payload.Text(item)
		return s, s != ""
	})
}

// majorUnits convertit des centimes en réais.
func majorUnits(minor any) decimal.Decimal {
	return decimal.NewFromFloat(payload.Float(minor)).Shift(-2)
}

// textOr renvoie le premier champ texte non vide, ou fallback.
func textOr(rec map[string]any, fallback string, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(payload.Text(rec[key])); s != "" {
			return payload.Text(rec[key])
		}
	}
	return fallback
}

func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	r := num / den
	return &r
}
