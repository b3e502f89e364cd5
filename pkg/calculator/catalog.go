package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"delupo-stats/pkg/models"
	"delupo-stats/pkg/payload"
)

const (
	UnnamedCustomer = "Unnamed customer"
	UnnamedProduct  = "Unnamed product"
)

// TopCustomers convertit la liste topCustomers (ordre de l'API, CA décroissant).
func TopCustomers(items []any) []models.CustomerRow {
	recs := records(items)
	out := make([]models.CustomerRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, models.CustomerRow{
			ID:      payload.Text(rec["customerId"]),
			Name:    textOr(rec, UnnamedCustomer, "name"),
			Email:   textOr(rec, noValue, "email"),
			Orders:  payload.Int(rec["orders"]),
			Revenue: majorUnits(rec["revenue"]),
		})
	}
	return out
}

// SortByOrders renvoie une copie triée par nombre de commandes décroissant.
func SortByOrders(rows []models.CustomerRow) []models.CustomerRow {
	out := make([]models.CustomerRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Orders > out[j].Orders })
	return out
}

// TopProducts : prix moyen = CA / quantité, indéfini pour une quantité nulle.
func TopProducts(items []any) []models.ProductRow {
	recs := records(items)
	out := make([]models.ProductRow, 0, len(recs))
	for _, rec := range recs {
		quantity := payload.Int(rec["quantity"])
		revenue := majorUnits(rec["revenue"])
		row := models.ProductRow{
			ID:          textOr(rec, "", "skuId", "productId"),
			ProductName: textOr(rec, UnnamedProduct, "productName"),
			SKUName:     textOr(rec, noValue, "skuName"),
			Quantity:    quantity,
			Revenue:     revenue,
		}
		if quantity != 0 {
			row.AvgPrice = decimal.NewNullDecimal(revenue.Div(decimal.NewFromInt(int64(quantity))))
		}
		out = append(out, row)
	}
	return out
}

func customerTypeStats(p models.RawPayload, kind string) models.CustomerTypeStats {
	v, _ := payload.Lookup(p, "byType", kind)
	rec, ok := payload.Record(v)
	if !ok {
		return models.CustomerTypeStats{Revenue: decimal.Zero, AvgOrderValue: decimal.Zero}
	}
	return models.CustomerTypeStats{
		Customers:     payload.Int(rec["totalCustomers"]),
		Orders:        payload.Int(rec["totalOrders"]),
		Revenue:       majorUnits(rec["totalRevenue"]),
		AvgOrderValue: majorUnits(rec["avgOrderValue"]),
	}
}

// CompareCustomerTypes compare les paniers moyens PJ (entreprises) et PF (particuliers).
func CompareCustomerTypes(p models.RawPayload) models.CustomerTypeComparison {
	pf := customerTypeStats(p, "pf")
	pj := customerTypeStats(p, "pj")
	diff := pj.AvgOrderValue.Sub(pf.AvgOrderValue)
	return models.CustomerTypeComparison{
		PF:           pf,
		PJ:           pj,
		Diff:         diff,
		RelativeDiff: ratio(diff.InexactFloat64(), pf.AvgOrderValue.InexactFloat64()),
	}
}

// SummarizeRevenue : CA total, CA facturé (status=invoiced) et part facturée.
func SummarizeRevenue(all, invoiced models.RawPayload) models.RevenueSummary {
	total := majorUnits(all["totalRevenue"])
	inv := majorUnits(invoiced["totalRevenue"])
	return models.RevenueSummary{
		TotalRevenue:    total,
		InvoicedRevenue: inv,
		InvoicedShare:   ratio(inv.InexactFloat64(), total.InexactFloat64()),
	}
}
