package payload

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"delupo-stats/pkg/models"
)

// Number convertit une valeur JSON en float64. Les chaînes numériques sont acceptées ;
// tout le reste (nil, booléen, texte) donne ok=false.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Float : comme Number, 0 par défaut.
func Float(v any) float64 {
	f, _ := Number(v)
	return f
}

// Int arrondit la valeur au plus proche ; 0 par défaut.
func Int(v any) int {
	f, ok := Number(v)
	if !ok {
		return 0
	}
	return int(math.Round(f))
}

// Text renvoie la représentation texte d'un scalaire, "" pour nil ou une structure.
func Text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool, int, int64:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

// Record renvoie l'objet JSON porté par v, s'il en est un.
func Record(v any) (map[string]any, bool) {
	switch r := v.(type) {
	case map[string]any:
		return r, r != nil
	case models.RawPayload:
		return r, r != nil
	default:
		return nil, false
	}
}

// Lookup suit un chemin de clés imbriquées ("orders", "daily").
func Lookup(p map[string]any, path ...string) (any, bool) {
	var cur any = p
	for _, key := range path {
		rec, ok := Record(cur)
		if !ok {
			return nil, false
		}
		cur, ok = rec[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Array renvoie le tableau situé au chemin donné, ok=false sinon.
func Array(p map[string]any, path ...string) ([]any, bool) {
	v, ok := Lookup(p, path...)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}
