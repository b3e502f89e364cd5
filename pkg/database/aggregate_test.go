package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delupo-stats/pkg/source"
)

var (
	testFrom = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testTo   = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// jeu commun : client 1 (janv.), client 2 (déc. 2023, hors fenêtre de cohortes), client 3 (fév.)
func sampleEvents() []OrderEvent {
	return []OrderEvent{
		{CustomerID: 1, FirstOrderDT: day(2024, 1, 5), EventDate: day(2024, 1, 5)},
		{CustomerID: 1, FirstOrderDT: day(2024, 1, 5), EventDate: day(2024, 1, 20)},
		{CustomerID: 1, FirstOrderDT: day(2024, 1, 5), EventDate: day(2024, 2, 3)},
		{CustomerID: 2, FirstOrderDT: day(2023, 12, 1), EventDate: day(2024, 1, 10)},
		{CustomerID: 2, FirstOrderDT: day(2023, 12, 1), EventDate: day(2024, 2, 11)},
		{CustomerID: 3, FirstOrderDT: day(2024, 2, 14), EventDate: day(2024, 2, 14)},
		{CustomerID: 3, FirstOrderDT: day(2024, 2, 14), EventDate: day(2024, 3, 2)},
	}
}

func TestMonthList(t *testing.T) {
	assert.Equal(t, []any{"2024-01-01", "2024-02-01", "2024-03-01"}, monthList(testFrom, testTo, nil))
	assert.Equal(t, []any{}, monthList(testTo, testFrom, nil))
}

func TestCohortPayload(t *testing.T) {
	p := CohortPayload(sampleEvents(), testFrom, testTo, nil)

	assert.Equal(t, []any{"2024-01-01", "2024-02-01", "2024-03-01"}, p["months"])
	assert.Equal(t, []any{
		map[string]any{"cohortMonth": "2024-01-01", "orderMonth": "2024-01-01", "customers": float64(1)},
		map[string]any{"cohortMonth": "2024-01-01", "orderMonth": "2024-02-01", "customers": float64(1)},
		map[string]any{"cohortMonth": "2024-02-01", "orderMonth": "2024-02-01", "customers": float64(1)},
		map[string]any{"cohortMonth": "2024-02-01", "orderMonth": "2024-03-01", "customers": float64(1)},
	}, p["items"])
}

func TestCohortPayload_NoEvents(t *testing.T) {
	p := CohortPayload(nil, testFrom, testTo, nil)
	assert.Equal(t, []any{}, p["items"])
	assert.Len(t, p["months"], 3)
}

func TestNewVsReturningPayload(t *testing.T) {
	p := NewVsReturningPayload(sampleEvents(), testFrom, testTo, nil)
	assert.Equal(t, []any{
		map[string]any{"periodStart": "2024-01-01", "newOrders": float64(2), "returningOrders": float64(1)},
		map[string]any{"periodStart": "2024-02-01", "newOrders": float64(1), "returningOrders": float64(2)},
		map[string]any{"periodStart": "2024-03-01", "newOrders": float64(0), "returningOrders": float64(1)},
	}, p["items"])
}

func TestRetentionPayload(t *testing.T) {
	p := RetentionPayload(sampleEvents(), testFrom, testTo, nil)
	assert.Equal(t, []any{
		map[string]any{"periodStart": "2024-01-01", "customers": float64(2), "previousCustomers": float64(0), "retainedCustomers": float64(0)},
		map[string]any{"periodStart": "2024-02-01", "customers": float64(3), "previousCustomers": float64(2), "retainedCustomers": float64(2)},
		map[string]any{"periodStart": "2024-03-01", "customers": float64(1), "previousCustomers": float64(3), "retainedCustomers": float64(1)},
	}, p["items"])
}

func TestCohortPayload_MonthsFollowLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	// 1er février 01:00 UTC = 31 janvier 22:00 à -03:00
	ev := OrderEvent{CustomerID: 9, FirstOrderDT: time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)}
	ev.EventDate = ev.FirstOrderDT
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)

	items := CohortPayload([]OrderEvent{ev}, from, to, loc)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "2024-01-01", items[0].(map[string]any)["cohortMonth"])
}

func TestSource_UnsupportedEndpoint(t *testing.T) {
	_, err := NewSource(nil, "", nil).Fetch(context.Background(), source.Orders, nil)
	assert.True(t, errors.Is(err, source.ErrUnsupported))
}

func TestSource_RequiresRange(t *testing.T) {
	s := NewSource(nil, "", nil)
	_, err := s.Fetch(context.Background(), source.Cohort, source.Params{"end": "2024-01-31"})
	assert.Error(t, err)
	_, err = s.Fetch(context.Background(), source.Cohort, source.Params{"start": "2024-02-01", "end": "2024-01-31"})
	assert.Error(t, err)
	_, err = s.Fetch(context.Background(), source.Cohort, source.Params{"start": "2024-01-01", "end": "2024-01-31", "timezone": "Nowhere/City"})
	assert.Error(t, err)
}
