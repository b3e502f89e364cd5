package calculator

import (
	"time"

	"delupo-stats/pkg/calendar"
	"delupo-stats/pkg/models"
	"delupo-stats/pkg/payload"
)

// RetentionRows : taux = retenus / clients de la période précédente, nil sans période précédente.
func RetentionRows(items []any, loc *time.Location) []models.RetentionRow {
	recs := records(items)
	out := make([]models.RetentionRow, 0, len(recs))
	for _, rec := range recs {
		previous := payload.Int(rec["previousCustomers"])
		retained := payload.Int(rec["retainedCustomers"])
		period := calendar.MonthKey(payload.Text(rec["periodStart"]), loc)
		if period == "" {
			period = noValue
		}
		row := models.RetentionRow{
			Period:            period,
			Customers:         payload.Int(rec["customers"]),
			PreviousCustomers: previous,
			RetainedCustomers: retained,
		}
		if previous > 0 {
			row.RetentionRate = ratio(float64(retained), float64(previous))
		}
		out = append(out, row)
	}
	return out
}

// LatestRetention renvoie la dernière période, false si la liste est vide.
func LatestRetention(rows []models.RetentionRow) (models.RetentionRow, bool) {
	if len(rows) == 0 {
		return models.RetentionRow{}, false
	}
	return rows[len(rows)-1], true
}

// NewVsReturningRows : commandes de nouveaux vs clients récurrents par mois.
func NewVsReturningRows(items []any, loc *time.Location) []models.NewVsReturningRow {
	recs := records(items)
	out := make([]models.NewVsReturningRow, 0, len(recs))
	for _, rec := range recs {
		newOrders := payload.Int(rec["newOrders"])
		returning := payload.Int(rec["returningOrders"])
		total := newOrders + returning
		row := models.NewVsReturningRow{
			Period:          calendar.MonthLabel(payload.Text(rec["periodStart"]), loc),
			NewOrders:       newOrders,
			ReturningOrders: returning,
			TotalOrders:     total,
		}
		if total > 0 {
			row.NewShare = ratio(float64(newOrders), float64(total))
			row.ReturningShare = ratio(float64(returning), float64(total))
		}
		out = append(out, row)
	}
	return out
}

// AverageShares : moyenne des parts sur les seules périodes ayant des commandes.
// Une période sans commande n'entre pas dans la moyenne.
func AverageShares(rows []models.NewVsReturningRow) models.ShareAverage {
	var newSum, returningSum float64
	count := 0
	for _, row := range rows {
		if row.TotalOrders <= 0 {
			continue
		}
		newSum += float64(row.NewOrders) / float64(row.TotalOrders)
		returningSum += float64(row.ReturningOrders) / float64(row.TotalOrders)
		count++
	}
	if count == 0 {
		return models.ShareAverage{}
	}
	return models.ShareAverage{
		NewShare:       ratio(newSum, float64(count)),
		ReturningShare: ratio(returningSum, float64(count)),
	}
}

// TargetStatus situe une part par rapport à un objectif.
type TargetStatus string

const (
	TargetUnknown TargetStatus = "unknown"
	TargetBelow   TargetStatus = "below"
	TargetMet     TargetStatus = "met"
)

// CompareToTarget : une part indéfinie n'est ni au-dessus ni en dessous de l'objectif.
func CompareToTarget(share *float64, target float64) TargetStatus {
	switch {
	case share == nil:
		return TargetUnknown
	case *share >= target:
		return TargetMet
	default:
		return TargetBelow
	}
}
