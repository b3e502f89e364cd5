package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

/*
LOAD → payloads bruts tels que renvoyés par l'API de métriques.
*/

// RawPayload est la réponse JSON non typée d'un endpoint. Un payload nil signifie "pas encore de données".
type RawPayload map[string]any

// Granularity est l'unité de regroupement demandée (groupBy).
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity retombe sur Day pour toute valeur inconnue.
func ParseGranularity(s string) Granularity {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case Week:
		return Week
	case Month:
		return Month
	default:
		return Day
	}
}

/*
SERIES → série temporelle normalisée.
*/

// SeriesPoint est un point {period, value} ; Period est toujours renseigné.
type SeriesPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// ValueKind indique si les valeurs d'une série sont monétaires ou des comptages.
type ValueKind int

const (
	KindMoney ValueKind = iota
	KindCount
)

func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k ValueKind) String() string {
	if k == KindMoney {
		return "money"
	}
	return "count"
}

// ValueMeta décrit comment afficher une série : libellé + formateur.
type ValueMeta struct {
	Label  string               `json:"label"`
	Kind   ValueKind            `json:"kind"`
	Format func(float64) string `json:"-"`
}

/*
GROUPING → tableaux groupés (UTM, coupons).
*/

// ChildRow est une ligne brute rattachée à un groupe UTM (une par item, sans dédoublonnage).
type ChildRow struct {
	Source   string          `json:"source"`
	Medium   string          `json:"medium"`
	Campaign string          `json:"campaign"`
	Orders   int             `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// GroupedRow agrège les commandes et le CA d'une clé, avec sa part du total.
// Share est nil quand le CA total est nul.
type GroupedRow struct {
	Key      string          `json:"key"`
	Orders   int             `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
	Share    *float64        `json:"share"`
	Children []ChildRow      `json:"children,omitempty"`
}

/*
COHORT → matrice cohorte × mois d'activité.
*/

// CohortRow contient les clients d'une cohorte par mois d'activité.
// Une cellule antérieure à la cohorte est absente de Values (non applicable).
type CohortRow struct {
	CohortKey string         `json:"cohortKey"`
	Values    map[string]int `json:"values"`
}

// Applicable est faux pour un mois strictement antérieur à la cohorte.
func (r CohortRow) Applicable(month string) bool {
	return month >= r.CohortKey
}

// Cell renvoie la valeur d'une cellule et false si elle est absente.
func (r CohortRow) Cell(month string) (int, bool) {
	v, ok := r.Values[month]
	return v, ok
}

// Baseline est la taille de la cohorte (sa propre colonne).
func (r CohortRow) Baseline() int {
	return r.Values[r.CohortKey]
}

// Share = cellule / taille de la cohorte ; nil si non applicable ou taille nulle.
func (r CohortRow) Share(month string) *float64 {
	if !r.Applicable(month) {
		return nil
	}
	base := r.Baseline()
	if base <= 0 {
		return nil
	}
	s := float64(r.Values[month]) / float64(base)
	return &s
}

// CohortMatrix : lignes triées par cohorte croissante, Totals aligné sur Months.
type CohortMatrix struct {
	Months []string    `json:"months"`
	Rows   []CohortRow `json:"rows"`
	Totals []int       `json:"totals"`
}

// TotalFor renvoie le total d'une colonne (0 si le mois est inconnu).
func (m CohortMatrix) TotalFor(month string) int {
	for i, mo := range m.Months {
		if mo == month && i < len(m.Totals) {
			return m.Totals[i]
		}
	}
	return 0
}

/*
RETENTION → rétention période sur période et nouveaux vs récurrents.
*/

// RetentionRow : RetentionRate est nil quand PreviousCustomers == 0.
type RetentionRow struct {
	Period            string   `json:"period"`
	Customers         int      `json:"customers"`
	PreviousCustomers int      `json:"previousCustomers"`
	RetainedCustomers int      `json:"retainedCustomers"`
	RetentionRate     *float64 `json:"retentionRate"`
}

// NewVsReturningRow : parts nil quand TotalOrders == 0.
type NewVsReturningRow struct {
	Period          string   `json:"period"`
	NewOrders       int      `json:"newOrders"`
	ReturningOrders int      `json:"returningOrders"`
	TotalOrders     int      `json:"totalOrders"`
	NewShare        *float64 `json:"newShare"`
	ReturningShare  *float64 `json:"returningShare"`
}

// ShareAverage est la moyenne des parts sur les périodes mesurables ; nil sinon.
type ShareAverage struct {
	NewShare       *float64 `json:"newShare"`
	ReturningShare *float64 `json:"returningShare"`
}

/*
CATALOG → clients, produits, résumés.
*/

type CustomerRow struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductRow : AvgPrice invalide quand la quantité est nulle.
type ProductRow struct {
	ID          string              `json:"id"`
	ProductName string              `json:"productName"`
	SKUName     string              `json:"skuName"`
	Quantity    int                 `json:"quantity"`
	Revenue     decimal.Decimal     `json:"revenue"`
	AvgPrice    decimal.NullDecimal `json:"avgPrice"`
}

// CustomerTypeStats : agrégats d'un type de client (PF = particulier, PJ = entreprise).
type CustomerTypeStats struct {
	Customers     int             `json:"totalCustomers"`
	Orders        int             `json:"totalOrders"`
	Revenue       decimal.Decimal `json:"totalRevenue"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
}

// CustomerTypeComparison compare les paniers moyens PJ et PF.
// RelativeDiff = Diff / panier PF, nil quand le panier moyen PF est nul.
type CustomerTypeComparison struct {
	PF           CustomerTypeStats `json:"pf"`
	PJ           CustomerTypeStats `json:"pj"`
	Diff         decimal.Decimal   `json:"diff"`
	RelativeDiff *float64          `json:"relativeDiff"`
}

// RevenueSummary : InvoicedShare est nil quand le CA total est nul.
type RevenueSummary struct {
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	InvoicedRevenue decimal.Decimal `json:"invoicedRevenue"`
	InvoicedShare   *float64        `json:"invoicedShare"`
}
