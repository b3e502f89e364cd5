package calculator

import (
	"sort"
	"time"

	"delupo-stats/pkg/calendar"
	"delupo-stats/pkg/logging"
	"delupo-stats/pkg/models"
	"delupo-stats/pkg/payload"
)

var (
	cohortFields   = []string{"cohortMonth", "cohortPeriod", "cohort"}
	activityFields = []string{"orderMonth", "activityPeriod", "month"}
)

// CohortMonths canonicalise la liste des mois connus (jour, dans loc) en gardant son ordre.
func CohortMonths(months []string, loc *time.Location) []string {
	out := make([]string, 0, len(months))
	seen := make(map[string]bool, len(months))
	for _, m := range months {
		key := calendar.DayKey(m, loc)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

// BuildCohortMatrix construit la matrice cohorte × mois d'activité.
//
// Une cellule d'un mois antérieur à la cohorte n'existe pas (aucun client ne précède sa
// première commande) ; une cellule applicable sans donnée vaut 0. Sans liste de mois, la
// matrice est vide.
func BuildCohortMatrix(items []any, months []string, loc *time.Location) models.CohortMatrix {
	cols := CohortMonths(months, loc)
	if len(cols) == 0 {
		return models.CohortMatrix{Months: []string{}, Rows: []models.CohortRow{}, Totals: []int{}}
	}

	log := logging.With("cohort")
	var order []string
	byCohort := map[string]*models.CohortRow{}
	for _, rec := range records(items) {
		cohortKey := calendar.DayKey(textOr(rec, "", cohortFields...), loc)
		activityKey := calendar.DayKey(textOr(rec, "", activityFields...), loc)
		if cohortKey == "" || activityKey == "" {
			continue
		}
		row, ok := byCohort[cohortKey]
		if !ok {
			row = &models.CohortRow{CohortKey: cohortKey, Values: map[string]int{}}
			byCohort[cohortKey] = row
			order = append(order, cohortKey)
		}
		if activityKey < cohortKey {
			log.Debug().Str("cohort", cohortKey).Str("month", activityKey).Msg("cellule antérieure à la cohorte ignorée")
			continue
		}
		row.Values[activityKey] = payload.Int(rec["customers"])
	}

	rows := make([]models.CohortRow, 0, len(order))
	for _, key := range order {
		row := *byCohort[key]
		for _, month := range cols {
			if _, ok := row.Values[month]; !ok && row.Applicable(month) {
				row.Values[month] = 0
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CohortKey < rows[j].CohortKey })

	totals := make([]int, len(cols))
	for i, month := range cols {
		for _, row := range rows {
			totals[i] += row.Values[month]
		}
	}
	return models.CohortMatrix{Months: cols, Rows: rows, Totals: totals}
}
