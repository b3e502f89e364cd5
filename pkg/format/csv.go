package format

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// Column décrit une colonne exportable : clé stable, libellé d'en-tête, accès à la valeur.
type Column[T any] struct {
	Key   string
	Label string
	Value func(T) any
}

// Flatten produit des lignes plates de valeurs primitives indexées par clé de colonne.
func Flatten[T any](rows []T, cols []Column[T]) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		flat := make(map[string]any, len(cols))
		for _, col := range cols {
			flat[col.Key] = primitive(col.Value(row))
		}
		out = append(out, flat)
	}
	return out
}

// Records renvoie l'en-tête puis une ligne de cellules texte par row ; nil et indéfini → "".
func Records[T any](rows []T, cols []Column[T]) [][]string {
	records := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Label
	}
	records = append(records, header)
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, col := range cols {
			line[i] = Cell(col.Value(row))
		}
		records = append(records, line)
	}
	return records
}

// WriteCSV écrit l'export CSV (en-tête = libellés).
func WriteCSV[T any](w io.Writer, rows []T, cols []Column[T]) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Records(rows, cols)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// primitive ramène les types du domaine (pointeurs, décimaux) à des scalaires JSON.
func primitive(v any) any {
	switch x := v.(type) {
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case decimal.Decimal:
		return x.InexactFloat64()
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return x.Decimal.InexactFloat64()
	default:
		return v
	}
}

// Cell rend une valeur brute sous forme texte, sans mise en forme locale.
func Cell(v any) string {
	switch x := primitive(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
