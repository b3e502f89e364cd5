package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/samber/lo"

	"delupo-stats/pkg/calculator"
	"delupo-stats/pkg/calendar"
	"delupo-stats/pkg/logging"
	"delupo-stats/pkg/models"
	"delupo-stats/pkg/payload"
	"delupo-stats/pkg/source"
)

/*
ORDERS → série du graphique, sources UTM, coupons, CA facturé.
*/

type OrdersView struct {
	Filters Filters               `json:"filters"`
	Meta    models.ValueMeta      `json:"meta"`
	Series  []models.SeriesPoint  `json:"series"`
	// SeriesField : champ du payload d'où vient la série ("" si aucun).
	SeriesField string                `json:"seriesField,omitempty"`
	UTM         []models.GroupedRow   `json:"utm"`
	Coupons     []models.GroupedRow   `json:"coupons"`
	Revenue     models.RevenueSummary `json:"revenue"`
}

func (d *Dashboard) Orders(ctx context.Context, f Filters) (*OrdersView, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	q := f.query()
	got, err := d.fetch(ctx, []request{
		{"orders", source.Orders, q},
		{"utm", source.UTM, q.With("all", "true")},
		{"coupons", source.Coupons, q.With("all", "true")},
		{"summary", source.Summary, f.base().With("status", "")},
		{"summaryInvoiced", source.Summary, f.base().With("status", "invoiced")},
	})
	if err != nil {
		return nil, err
	}
	return BuildOrdersView(f, got["orders"], got["utm"], got["coupons"], got["summary"], got["summaryInvoiced"]), nil
}

// BuildOrdersView est la partie pure de Orders.
func BuildOrdersView(f Filters, orders, utm, coupons, summary, invoiced models.RawPayload) *OrdersView {
	g := f.Granularity()
	loc := f.Location()
	field := payload.SeriesField(orders)
	if field == "" && orders != nil {
		log := logging.With("dashboard")
		log.Debug().Strs("keys", lo.Keys(orders)).Msg("aucune série reconnue dans le payload orders")
	}
	return &OrdersView{
		Filters:     f,
		Meta:        payload.DetectValueMeta(orders, g),
		Series:      calendar.FillGaps(payload.NormalizeSeries(orders), f.Start, f.End, g, loc),
		SeriesField: field,
		UTM:         calculator.GroupByUTMSource(calculator.Items(utm, "items")),
		Coupons:     calculator.GroupByCoupon(calculator.Items(coupons, "items")),
		Revenue:     calculator.SummarizeRevenue(summary, invoiced),
	}
}

/*
CLIENTS → meilleurs clients, comparaison PF / PJ.
*/

type ClientsView struct {
	Filters    Filters                       `json:"filters"`
	TopRevenue []models.CustomerRow          `json:"topRevenue"`
	TopOrders  []models.CustomerRow          `json:"topOrders"`
	Comparison models.CustomerTypeComparison `json:"comparison"`
}

func (d *Dashboard) Clients(ctx context.Context, f Filters) (*ClientsView, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	got, err := d.fetch(ctx, []request{
		{"customers", source.Customers, f.base().With("limit", strconv.Itoa(d.opts.TopCustomers))},
	})
	if err != nil {
		return nil, err
	}
	return BuildClientsView(f, got["customers"], d.opts.TopCustomers), nil
}

// BuildClientsView ; limit <= 0 garde tous les clients.
func BuildClientsView(f Filters, customers models.RawPayload, limit int) *ClientsView {
	top := truncate(calculator.TopCustomers(calculator.Items(customers, "topCustomers")), limit)
	return &ClientsView{
		Filters:    f,
		TopRevenue: top,
		TopOrders:  calculator.SortByOrders(top),
		Comparison: calculator.CompareCustomerTypes(customers),
	}
}

/*
PRODUCTS → classements par quantité et par CA.
*/

type ProductsView struct {
	Filters    Filters             `json:"filters"`
	ByQuantity []models.ProductRow `json:"byQuantity"`
	ByRevenue  []models.ProductRow `json:"byRevenue"`
}

func (d *Dashboard) Products(ctx context.Context, f Filters) (*ProductsView, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	limit := strconv.Itoa(d.opts.TopProducts)
	got, err := d.fetch(ctx, []request{
		{"quantity", source.Products, f.base().With("limit", limit).With("sort", "quantity")},
		{"revenue", source.Products, f.base().With("limit", limit).With("sort", "revenue")},
	})
	if err != nil {
		return nil, err
	}
	return BuildProductsView(f, got["quantity"], got["revenue"], d.opts.TopProducts), nil
}

func BuildProductsView(f Filters, byQuantity, byRevenue models.RawPayload, limit int) *ProductsView {
	return &ProductsView{
		Filters:    f,
		ByQuantity: truncate(calculator.TopProducts(calculator.Items(byQuantity, "items")), limit),
		ByRevenue:  truncate(calculator.TopProducts(calculator.Items(byRevenue, "items")), limit),
	}
}

/*
RETENTION → rétention mensuelle, cohortes, nouveaux vs récurrents.
*/

type RetentionView struct {
	Filters         Filters                    `json:"filters"`
	Retention       []models.RetentionRow      `json:"retention"`
	Latest          *models.RetentionRow       `json:"latest"`
	Cohort          models.CohortMatrix        `json:"cohort"`
	NewVsReturning  []models.NewVsReturningRow `json:"newVsReturning"`
	Average         models.ShareAverage        `json:"average"`
	NewStatus       calculator.TargetStatus    `json:"newStatus"`
	ReturningStatus calculator.TargetStatus    `json:"returningStatus"`
}

func (d *Dashboard) Retention(ctx context.Context, f Filters) (*RetentionView, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	p := f.base()
	got, err := d.fetch(ctx, []request{
		{"retention", source.Retention, p},
		{"cohort", source.Cohort, p},
		{"newVsReturning", source.NewVsReturning, p},
	})
	if err != nil {
		return nil, err
	}
	return BuildRetentionView(f, got["retention"], got["cohort"], got["newVsReturning"], d.opts), nil
}

func BuildRetentionView(f Filters, retention, cohort, newVsReturning models.RawPayload, opts Options) *RetentionView {
	loc := f.Location()
	v := &RetentionView{
		Filters:        f,
		Retention:      calculator.RetentionRows(calculator.Items(retention, "items"), loc),
		Cohort:         calculator.BuildCohortMatrix(calculator.Items(cohort, "items"), cohortMonths(f, cohort, loc), loc),
		NewVsReturning: calculator.NewVsReturningRows(calculator.Items(newVsReturning, "items"), loc),
	}
	if latest, ok := calculator.LatestRetention(v.Retention); ok {
		v.Latest = &latest
	}
	v.Average = calculator.AverageShares(v.NewVsReturning)
	v.NewStatus = calculator.CompareToTarget(v.Average.NewShare, opts.NewTarget)
	v.ReturningStatus = calculator.CompareToTarget(v.Average.ReturningShare, opts.ReturningTarget)
	return v
}

// cohortMonths : liste "months" du payload ; si le champ manque alors que des items sont
// présents, les mois de la plage filtrée. Une liste vide reste vide.
func cohortMonths(f Filters, cohort models.RawPayload, loc *time.Location) []string {
	if months, ok := payload.Array(cohort, "months"); ok {
		return calculator.Strings(months)
	}
	if len(calculator.Items(cohort, "items")) == 0 {
		return nil
	}
	start, err := calendar.ParseDate(f.Start, loc)
	if err != nil {
		return nil
	}
	end, err := calendar.ParseDate(f.End, loc)
	if err != nil {
		return nil
	}
	return calendar.Periods(start, end, models.Month, loc)
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
