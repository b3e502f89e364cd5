package calculator

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"delupo-stats/pkg/models"
	"delupo-stats/pkg/payload"
)

const (
	// DirectSource remplace une source UTM absente, vide ou "(none)".
	DirectSource = "Direct"
	// NoCoupon remplace un code coupon absent.
	NoCoupon = "no coupon"

	noValue = "-"
)

// groupFold accumule les groupes dans l'ordre de première apparition.
type groupFold struct {
	order []string
	byKey map[string]*models.GroupedRow
}

func newGroupFold() *groupFold {
	return &groupFold{byKey: map[string]*models.GroupedRow{}}
}

func (f *groupFold) add(key string, orders int, revenue decimal.Decimal, child *models.ChildRow) {
	g, ok := f.byKey[key]
	if !ok {
		g = &models.GroupedRow{Key: key, Revenue: decimal.Zero}
		f.byKey[key] = g
		f.order = append(f.order, key)
	}
	g.Orders += orders
	g.Revenue = g.Revenue.Add(revenue)
	if child != nil {
		g.Children = append(g.Children, *child)
	}
}

// rows matérialise les groupes : enfants puis groupes triés par CA décroissant, parts calculées.
func (f *groupFold) rows() []models.GroupedRow {
	out := make([]models.GroupedRow, 0, len(f.order))
	total := decimal.Zero
	for _, key := range f.order {
		g := *f.byKey[key]
		sort.SliceStable(g.Children, func(i, j int) bool {
			return g.Children[i].Revenue.GreaterThan(g.Children[j].Revenue)
		})
		total = total.Add(g.Revenue)
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	if total.IsZero() {
		return out
	}
	for i := range out {
		share := out[i].Revenue.Div(total).InexactFloat64()
		out[i].Share = &share
	}
	return out
}

// UTMSource normalise une source UTM : absente, vide ou "(none)" → Direct.
func UTMSource(raw any) string {
	s := payload.Text(raw)
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "(none)") {
		return DirectSource
	}
	return s
}

// GroupByUTMSource regroupe les items UTM par source, avec le détail medium/campagne de chaque item.
func GroupByUTMSource(items []any) []models.GroupedRow {
	fold := newGroupFold()
	for _, rec := range records(items) {
		source := UTMSource(rec["utmSource"])
		orders := payload.Int(rec["orders"])
		revenue := majorUnits(rec["revenue"])
		fold.add(source, orders, revenue, &models.ChildRow{
			Source:   source,
			Medium:   textOr(rec, noValue, "utmMedium"),
			Campaign: textOr(rec, noValue, "utmCampaign"),
			Orders:   orders,
			Revenue:  revenue,
		})
	}
	return fold.rows()
}

// GroupByCoupon : même agrégation, sur un seul niveau, par code coupon.
func GroupByCoupon(items []any) []models.GroupedRow {
	fold := newGroupFold()
	for _, rec := range records(items) {
		code := textOr(rec, NoCoupon, "couponCode")
		fold.add(code, payload.Int(rec["orders"]), majorUnits(rec["revenue"]), nil)
	}
	return fold.rows()
}
