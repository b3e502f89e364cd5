package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/samber/lo"

	"delupo-stats/pkg/calculator"
	"delupo-stats/pkg/calendar"
	"delupo-stats/pkg/dashboard"
	"delupo-stats/pkg/format"
	"delupo-stats/pkg/models"
)

// renderer écrit les sections d'une vue en tableaux ou en CSV.
type renderer struct {
	w   io.Writer
	csv bool
	n   int // sections déjà écrites
}

// render : JSON pour toute la vue, sinon une section par tableau.
func (a *app) render(view any, sections func(*renderer) error) error {
	if a.opts.json {
		b, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(a.out, string(b))
		return err
	}
	return sections(&renderer{w: a.out, csv: a.opts.csv})
}

// column : valeur brute pour le CSV, texte mis en forme pour le tableau (Cell si show est nil).
type column[T any] struct {
	format.Column[T]
	show func(T) string
}

func col[T any](key, label string, value func(T) any, show func(T) string) column[T] {
	return column[T]{Column: format.Column[T]{Key: key, Label: label, Value: value}, show: show}
}

func section[T any](r *renderer, title string, rows []T, cols []column[T]) error {
	if r.n > 0 {
		if _, err := fmt.Fprintln(r.w); err != nil {
			return err
		}
	}
	r.n++

	if r.csv {
		plain := lo.Map(cols, func(c column[T], _ int) format.Column[T] { return c.Column })
		return format.WriteCSV(r.w, rows, plain)
	}

	if _, err := fmt.Fprintln(r.w, title); err != nil {
		return err
	}
	header := lo.Map(cols, func(c column[T], _ int) string { return c.Label })
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			if c.show != nil {
				line[i] = c.show(row)
			} else {
				line[i] = format.Cell(c.Value(row))
			}
		}
		body = append(body, line)
	}
	return writeTable(r.w, header, body)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	return table.Render()
}

// indicator : ligne libellé / valeur des sections de synthèse.
type indicator struct {
	Name  string
	Value any
	Text  string
}

var indicatorCols = []column[indicator]{
	col("name", "Indicator", func(i indicator) any { return i.Name }, nil),
	col("value", "Value", func(i indicator) any { return i.Value }, func(i indicator) string { return i.Text }),
}

/*
ORDERS
*/

func (r *renderer) orders(v *dashboard.OrdersView) error {
	rev := v.Revenue
	summary := []indicator{
		{"Total revenue", rev.TotalRevenue, format.CurrencyDecimal(rev.TotalRevenue)},
		{"Invoiced revenue", rev.InvoicedRevenue, format.CurrencyDecimal(rev.InvoicedRevenue)},
		{"Invoiced share", rev.InvoicedShare, format.PercentPtr(rev.InvoicedShare, 1)},
	}
	if err := section(r, "Revenue", summary, indicatorCols); err != nil {
		return err
	}

	meta := v.Meta
	if err := section(r, meta.Label, v.Series, []column[models.SeriesPoint]{
		col("period", "Period", func(p models.SeriesPoint) any { return p.Period }, nil),
		col("value", meta.Label, func(p models.SeriesPoint) any { return p.Value },
			func(p models.SeriesPoint) string { return meta.Format(p.Value) }),
	}); err != nil {
		return err
	}

	if err := section(r, "UTM sources", v.UTM, groupCols("Source")); err != nil {
		return err
	}
	children := lo.FlatMap(v.UTM, func(g models.GroupedRow, _ int) []models.ChildRow { return g.Children })
	if err := section(r, "UTM campaigns", children, []column[models.ChildRow]{
		col("source", "Source", func(c models.ChildRow) any { return c.Source }, nil),
		col("medium", "Medium", func(c models.ChildRow) any { return c.Medium }, nil),
		col("campaign", "Campaign", func(c models.ChildRow) any { return c.Campaign }, nil),
		col("orders", "Orders", func(c models.ChildRow) any { return c.Orders },
			func(c models.ChildRow) string { return format.Int(c.Orders) }),
		col("revenue", "Revenue", func(c models.ChildRow) any { return c.Revenue },
			func(c models.ChildRow) string { return format.CurrencyDecimal(c.Revenue) }),
	}); err != nil {
		return err
	}
	return section(r, "Coupons", v.Coupons, groupCols("Coupon"))
}

func groupCols(keyLabel string) []column[models.GroupedRow] {
	return []column[models.GroupedRow]{
		col("key", keyLabel, func(g models.GroupedRow) any { return g.Key }, nil),
		col("orders", "Orders", func(g models.GroupedRow) any { return g.Orders },
			func(g models.GroupedRow) string { return format.Int(g.Orders) }),
		col("revenue", "Revenue", func(g models.GroupedRow) any { return g.Revenue },
			func(g models.GroupedRow) string { return format.CurrencyDecimal(g.Revenue) }),
		col("share", "Share", func(g models.GroupedRow) any { return g.Share },
			func(g models.GroupedRow) string { return format.PercentPtr(g.Share, 1) }),
	}
}

/*
CLIENTS
*/

var customerCols = []column[models.CustomerRow]{
	col("id", "ID", func(c models.CustomerRow) any { return c.ID }, nil),
	col("name", "Name", func(c models.CustomerRow) any { return c.Name }, nil),
	col("email", "Email", func(c models.CustomerRow) any { return c.Email }, nil),
	col("orders", "Orders", func(c models.CustomerRow) any { return c.Orders },
		func(c models.CustomerRow) string { return format.Int(c.Orders) }),
	col("revenue", "Revenue", func(c models.CustomerRow) any { return c.Revenue },
		func(c models.CustomerRow) string { return format.CurrencyDecimal(c.Revenue) }),
}

type customerType struct {
	Name  string
	Stats models.CustomerTypeStats
}

var customerTypeCols = []column[customerType]{
	col("type", "Type", func(c customerType) any { return c.Name }, nil),
	col("customers", "Customers", func(c customerType) any { return c.Stats.Customers },
		func(c customerType) string { return format.Int(c.Stats.Customers) }),
	col("orders", "Orders", func(c customerType) any { return c.Stats.Orders },
		func(c customerType) string { return format.Int(c.Stats.Orders) }),
	col("revenue", "Revenue", func(c customerType) any { return c.Stats.Revenue },
		func(c customerType) string { return format.CurrencyDecimal(c.Stats.Revenue) }),
	col("avgOrderValue", "Avg order value", func(c customerType) any { return c.Stats.AvgOrderValue },
		func(c customerType) string { return format.CurrencyDecimal(c.Stats.AvgOrderValue) }),
}

func (r *renderer) clients(v *dashboard.ClientsView) error {
	if err := section(r, "Top customers by revenue", v.TopRevenue, customerCols); err != nil {
		return err
	}
	if err := section(r, "Top customers by orders", v.TopOrders, customerCols); err != nil {
		return err
	}
	cmp := v.Comparison
	if err := section(r, "Customer types", []customerType{{"PF", cmp.PF}, {"PJ", cmp.PJ}}, customerTypeCols); err != nil {
		return err
	}
	return section(r, "PJ vs PF", []indicator{
		{"Avg order value difference", cmp.Diff, format.CurrencyDecimal(cmp.Diff)},
		{"Relative difference", cmp.RelativeDiff, format.PercentPtr(cmp.RelativeDiff, 1)},
	}, indicatorCols)
}

/*
PRODUCTS
*/

var productCols = []column[models.ProductRow]{
	col("id", "ID", func(p models.ProductRow) any { return p.ID }, nil),
	col("product", "Product", func(p models.ProductRow) any { return p.ProductName }, nil),
	col("sku", "SKU", func(p models.ProductRow) any { return p.SKUName }, nil),
	col("quantity", "Quantity", func(p models.ProductRow) any { return p.Quantity },
		func(p models.ProductRow) string { return format.Int(p.Quantity) }),
	col("revenue", "Revenue", func(p models.ProductRow) any { return p.Revenue },
		func(p models.ProductRow) string { return format.CurrencyDecimal(p.Revenue) }),
	col("avgPrice", "Avg price", func(p models.ProductRow) any { return p.AvgPrice },
		func(p models.ProductRow) string {
			if !p.AvgPrice.Valid {
				return "-"
			}
			return format.CurrencyDecimal(p.AvgPrice.Decimal)
		}),
}

func (r *renderer) products(v *dashboard.ProductsView) error {
	if err := section(r, "Top products by quantity", v.ByQuantity, productCols); err != nil {
		return err
	}
	return section(r, "Top products by revenue", v.ByRevenue, productCols)
}

/*
RETENTION
*/

var retentionCols = []column[models.RetentionRow]{
	col("period", "Period", func(x models.RetentionRow) any { return x.Period }, nil),
	col("customers", "Customers", func(x models.RetentionRow) any { return x.Customers }, nil),
	col("previousCustomers", "Previous", func(x models.RetentionRow) any { return x.PreviousCustomers }, nil),
	col("retainedCustomers", "Retained", func(x models.RetentionRow) any { return x.RetainedCustomers }, nil),
	col("retentionRate", "Retention", func(x models.RetentionRow) any { return x.RetentionRate },
		func(x models.RetentionRow) string { return format.PercentPtr(x.RetentionRate, 1) }),
}

var newVsReturningCols = []column[models.NewVsReturningRow]{
	col("period", "Period", func(x models.NewVsReturningRow) any { return x.Period }, nil),
	col("newOrders", "New", func(x models.NewVsReturningRow) any { return x.NewOrders }, nil),
	col("returningOrders", "Returning", func(x models.NewVsReturningRow) any { return x.ReturningOrders }, nil),
	col("totalOrders", "Total", func(x models.NewVsReturningRow) any { return x.TotalOrders }, nil),
	col("newShare", "New share", func(x models.NewVsReturningRow) any { return x.NewShare },
		func(x models.NewVsReturningRow) string { return format.PercentPtr(x.NewShare, 1) }),
	col("returningShare", "Returning share", func(x models.NewVsReturningRow) any { return x.ReturningShare },
		func(x models.NewVsReturningRow) string { return format.PercentPtr(x.ReturningShare, 1) }),
}

// cohortLine : une cohorte, ou la ligne des totaux (Row nil).
type cohortLine struct {
	Label string
	Row   *models.CohortRow
	Total map[string]int
}

func cohortCols(m models.CohortMatrix) []column[cohortLine] {
	cols := []column[cohortLine]{
		col("cohort", "Cohort", func(l cohortLine) any { return l.Label }, nil),
	}
	for _, month := range m.Months {
		cols = append(cols, col(month, calendar.MonthLabel(month, nil),
			func(l cohortLine) any {
				if l.Row == nil {
					return l.Total[month]
				}
				if v, ok := l.Row.Cell(month); ok {
					return v
				}
				return nil
			},
			func(l cohortLine) string {
				if l.Row == nil {
					return format.Int(l.Total[month])
				}
				v, ok := l.Row.Cell(month)
				if !ok {
					return ""
				}
				return fmt.Sprintf("%s (%s)", format.Int(v), format.PercentPtr(l.Row.Share(month), 1))
			}))
	}
	return cols
}

// cohortTitle : "Cohorts 01/2024 → 06/2024".
func cohortTitle(m models.CohortMatrix) string {
	first, errFirst := calendar.ParseKey(m.Months[0], nil)
	last, errLast := calendar.ParseKey(m.Months[len(m.Months)-1], nil)
	if errFirst != nil || errLast != nil {
		return "Cohorts"
	}
	return fmt.Sprintf("Cohorts %s → %s", calendar.FormatMonth(first), calendar.FormatMonth(last))
}

func cohortLines(m models.CohortMatrix) []cohortLine {
	lines := make([]cohortLine, 0, len(m.Rows)+1)
	for i := range m.Rows {
		row := &m.Rows[i]
		lines = append(lines, cohortLine{Label: calendar.MonthLabel(row.CohortKey, nil), Row: row})
	}
	total := make(map[string]int, len(m.Months))
	for _, month := range m.Months {
		total[month] = m.TotalFor(month)
	}
	return append(lines, cohortLine{Label: "Total", Total: total})
}

func (r *renderer) retention(v *dashboard.RetentionView) error {
	if err := section(r, "Retention", v.Retention, retentionCols); err != nil {
		return err
	}
	if len(v.Cohort.Months) > 0 {
		if err := section(r, cohortTitle(v.Cohort), cohortLines(v.Cohort), cohortCols(v.Cohort)); err != nil {
			return err
		}
	}
	if err := section(r, "New vs returning", v.NewVsReturning, newVsReturningCols); err != nil {
		return err
	}

	latest := "-"
	var latestRate *float64
	if v.Latest != nil {
		latest = v.Latest.Period
		latestRate = v.Latest.RetentionRate
	}
	return section(r, "Summary", []indicator{
		{"Latest period", latest, latest},
		{"Latest retention", latestRate, format.PercentPtr(latestRate, 1)},
		{"Avg new share", v.Average.NewShare, targetText(v.Average.NewShare, v.NewStatus)},
		{"Avg returning share", v.Average.ReturningShare, targetText(v.Average.ReturningShare, v.ReturningStatus)},
	}, indicatorCols)
}

func targetText(share *float64, status calculator.TargetStatus) string {
	return fmt.Sprintf("%s (%s)", format.PercentPtr(share, 1), status)
}
