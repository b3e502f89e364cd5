package database

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"delupo-stats/pkg/calendar"
	"delupo-stats/pkg/models"
)

type cohortCell struct {
	cohort, month string
}

// CohortPayload produit le payload de l'endpoint cohort à partir des commandes :
// clients distincts par (mois de première commande, mois de commande), pour les cohortes nées dans [from, to).
func CohortPayload(events []OrderEvent, from, to time.Time, loc *time.Location) models.RawPayload {
	customers := map[cohortCell]map[uint64]struct{}{}
	for _, ev := range events {
		if ev.FirstOrderDT.Before(from) || !ev.FirstOrderDT.Before(to) {
			continue
		}
		cell := cohortCell{
			cohort: calendar.PeriodKey(ev.FirstOrderDT, models.Month, loc),
			month:  calendar.PeriodKey(ev.EventDate, models.Month, loc),
		}
		if customers[cell] == nil {
			customers[cell] = map[uint64]struct{}{}
		}
		customers[cell][ev.CustomerID] = struct{}{}
	}

	cells := lo.Keys(customers)
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].cohort != cells[j].cohort {
			return cells[i].cohort < cells[j].cohort
		}
		return cells[i].month < cells[j].month
	})

	items := make([]any, 0, len(cells))
	for _, c := range cells {
		items = append(items, map[string]any{
			"cohortMonth": c.cohort,
			"orderMonth":  c.month,
			"customers":   float64(len(customers[c])),
		})
	}
	return models.RawPayload{"months": monthList(from, to, loc), "items": items}
}

// NewVsReturningPayload : une commande est "nouvelle" si elle tombe dans le mois de la première commande du client.
func NewVsReturningPayload(events []OrderEvent, from, to time.Time, loc *time.Location) models.RawPayload {
	type counts struct{ newOrders, returning int }
	byMonth := map[string]*counts{}
	for _, ev := range events {
		month := calendar.PeriodKey(ev.EventDate, models.Month, loc)
		c := byMonth[month]
		if c == nil {
			c = &counts{}
			byMonth[month] = c
		}
		if month == calendar.PeriodKey(ev.FirstOrderDT, models.Month, loc) {
			c.newOrders++
		} else {
			c.returning++
		}
	}

	months := monthList(from, to, loc)
	items := make([]any, 0, len(months))
	for _, m := range months {
		c := byMonth[m.(string)]
		if c == nil {
			c = &counts{}
		}
		items = append(items, map[string]any{
			"periodStart":     m,
			"newOrders":       float64(c.newOrders),
			"returningOrders": float64(c.returning),
		})
	}
	return models.RawPayload{"items": items}
}

// RetentionPayload : clients actifs par mois, actifs le mois précédent, et actifs les deux mois.
func RetentionPayload(events []OrderEvent, from, to time.Time, loc *time.Location) models.RawPayload {
	active := map[string]map[uint64]struct{}{}
	for _, ev := range events {
		month := calendar.PeriodKey(ev.EventDate, models.Month, loc)
		if active[month] == nil {
			active[month] = map[uint64]struct{}{}
		}
		active[month][ev.CustomerID] = struct{}{}
	}

	months := monthList(from, to, loc)
	items := make([]any, 0, len(months))
	for i, m := range months {
		current := active[m.(string)]
		var previous map[uint64]struct{}
		if i > 0 {
			previous = active[months[i-1].(string)]
		}
		retained := 0
		for id := range current {
			if _, ok := previous[id]; ok {
				retained++
			}
		}
		items = append(items, map[string]any{
			"periodStart":       m,
			"customers":         float64(len(current)),
			"previousCustomers": float64(len(previous)),
			"retainedCustomers": float64(retained),
		})
	}
	return models.RawPayload{"items": items}
}

// monthList : 1er de chaque mois couvert par [from, to), en JSON ([]any de chaînes).
func monthList(from, to time.Time, loc *time.Location) []any {
	last := to.Add(-time.Nanosecond)
	if last.Before(from) {
		return []any{}
	}
	return lo.Map(calendar.MonthsBetween(from, last, loc), func(m time.Time, _ int) any {
		return m.Format(calendar.KeyLayout)
	})
}
