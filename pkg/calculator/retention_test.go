package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delupo-stats/pkg/models"
)

func TestRetentionRows(t *testing.T) {
	rows := RetentionRows(items(t, `[
		{"periodStart":"2024-01-01","customers":50,"previousCustomers":0,"retainedCustomers":0},
		{"periodStart":"2024-02-01","customers":60,"previousCustomers":50,"retainedCustomers":20},
		{"periodStart":"2024-03-01","customers":40,"previousCustomers":60,"retainedCustomers":0},
		{"customers":1}
	]`), time.UTC)
	require.Len(t, rows, 4)

	assert.Equal(t, "2024-01", rows[0].Period)
	assert.Nil(t, rows[0].RetentionRate, "sans période précédente, le taux est indéfini")

	require.NotNil(t, rows[1].RetentionRate)
	assert.Equal(t, 20.0/50.0, *rows[1].RetentionRate)

	require.NotNil(t, rows[2].RetentionRate, "zéro retenu est une mesure, pas une absence")
	assert.Equal(t, 0.0, *rows[2].RetentionRate)

	assert.Equal(t, "-", rows[3].Period)
	assert.Nil(t, rows[3].RetentionRate)

	latest, ok := LatestRetention(rows[:3])
	assert.True(t, ok)
	assert.Equal(t, "2024-03", latest.Period)
	_, ok = LatestRetention(nil)
	assert.False(t, ok)
}

func TestRetentionAndNewVsReturning_UTCTimestampsInLocalZone(t *testing.T) {
	loc := saoPaulo(t)

	rows := RetentionRows(items(t, `[
		{"periodStart":"2024-03-01T00:00:00.000Z","customers":40,"previousCustomers":50,"retainedCustomers":20}
	]`), loc)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03", rows[0].Period)

	nvr := NewVsReturningRows(items(t, `[
		{"periodStart":"2024-03-01T00:00:00.000Z","newOrders":1,"returningOrders":1}
	]`), loc)
	require.Len(t, nvr, 1)
	assert.Equal(t, "Mar/2024", nvr[0].Period)
}

func TestNewVsReturning_AverageSkipsEmptyPeriods(t *testing.T) {
	rows := NewVsReturningRows(items(t, `[
		{"periodStart":"2024-01-01","newOrders":3,"returningOrders":1},
		{"periodStart":"2024-02-01","newOrders":0,"returningOrders":0}
	]`), time.UTC)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jan/2024", rows[0].Period)
	assert.Equal(t, 4, rows[0].TotalOrders)
	assert.InDelta(t, 0.75, *rows[0].NewShare, 1e-12)
	assert.Nil(t, rows[1].NewShare)
	assert.Nil(t, rows[1].ReturningShare)

	avg := AverageShares(rows)
	require.NotNil(t, avg.NewShare)
	assert.InDelta(t, 0.75, *avg.NewShare, 1e-12)
	assert.InDelta(t, 0.25, *avg.ReturningShare, 1e-12)
}

func TestAverageShares_IsMeanOfShares(t *testing.T) {
	rows := []models.NewVsReturningRow{
		{NewOrders: 1, ReturningOrders: 1, TotalOrders: 2},
		{NewOrders: 9, ReturningOrders: 1, TotalOrders: 10},
	}
	avg := AverageShares(rows)
	assert.InDelta(t, (0.5+0.9)/2, *avg.NewShare, 1e-12)
}

func TestAverageShares_NoMeasurablePeriod(t *testing.T) {
	avg := AverageShares([]models.NewVsReturningRow{{Period: "Jan/2024"}})
	assert.Nil(t, avg.NewShare)
	assert.Nil(t, avg.ReturningShare)
	assert.Equal(t, models.ShareAverage{}, AverageShares(nil))
}

func TestCompareToTarget(t *testing.T) {
	low, high := 0.1, 0.2
	assert.Equal(t, TargetUnknown, CompareToTarget(nil, 0.2))
	assert.Equal(t, TargetBelow, CompareToTarget(&low, 0.2))
	assert.Equal(t, TargetMet, CompareToTarget(&high, 0.2))
}
