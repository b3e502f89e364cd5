package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delupo-stats/pkg/logging"
	"delupo-stats/pkg/models"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("tzdata indisponible: %v", err)
	}
	return loc
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("032025", nil)
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Equal(got))

	loc := saoPaulo(t)
	got, err = ParseMonth("012024", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Equal(got))

	for _, bad := range []string{"32025", "132025", "03202a", "2024-01", ""} {
		_, err := ParseMonth(bad, nil)
		assert.Error(t, err, bad)
	}
}

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got := MonthsBetween(start, end, time.UTC)
	if len(got) != 4 {
		t.Fatalf("got %d months, want 4", len(got))
	}
	// spot-check
	if got[0].Month() != time.March || got[3].Month() != time.June || got[0].Day() != 1 {
		t.Fatalf("unexpected months: %v", got)
	}
}

func TestFormatMonth(t *testing.T) {
	assert.Equal(t, "11/2025", FormatMonth(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "02/2024", FormatMonth(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
}

func TestMonthKeyAndLabel(t *testing.T) {
	assert.Equal(t, "2024-03", MonthKey("2024-03-01", nil))
	assert.Equal(t, "Mar/2024", MonthLabel("2024-03-01", nil))
	assert.Equal(t, "-", MonthLabel("", nil))
	assert.Equal(t, "-", MonthLabel("n/a", nil))
	assert.Equal(t, "", MonthKey("n/a", nil))
}

func TestMonthKey_KeepsTimestampOffset(t *testing.T) {
	loc := saoPaulo(t)
	// minuit UTC le 1er mars reste mars, même lu depuis São Paulo
	assert.Equal(t, "2024-03", MonthKey("2024-03-01T00:00:00.000Z", loc))
	assert.Equal(t, "Mar/2024", MonthLabel("2024-03-01T00:00:00.000Z", loc))
	assert.Equal(t, "2024-03", MonthKey("2024-03-01T00:00:00-03:00", time.UTC))
	assert.Equal(t, "2024-03", MonthKey("2024-03-01", loc))
}

func TestParseKey(t *testing.T) {
	loc := saoPaulo(t)

	got, err := ParseKey("2024-01-01T00:00:00.000Z", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.Format(KeyLayout))
	assert.Equal(t, time.UTC, got.Location())

	got, err = ParseKey("2024-01-01", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Equal(got))

	got, err = ParseKey("2024-01-01 23:30:00", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 1, 23, 30, 0, 0, loc).Equal(got))

	_, err = ParseKey("", loc)
	assert.ErrorIs(t, err, ErrEmptyDate)
	_, err = ParseKey("janvier", loc)
	assert.Error(t, err)
}

func TestPeriodKey(t *testing.T) {
	// 2024-01-03 est un mercredi
	d := time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-03", PeriodKey(d, models.Day, time.UTC))
	assert.Equal(t, "2024-01-01", PeriodKey(d, models.Week, time.UTC))
	assert.Equal(t, "2024-01-01", PeriodKey(d, models.Month, time.UTC))

	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01", PeriodKey(sunday, models.Week, time.UTC))
}

func TestPeriods(t *testing.T) {
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)

	assert.Len(t, Periods(start, end, models.Day, time.UTC), 20)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22"},
		Periods(start, end, models.Week, time.UTC))

	endMonth := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01", "2024-03-01"},
		Periods(start, endMonth, models.Month, time.UTC))

	assert.Empty(t, Periods(end, start, models.Day, time.UTC))
}

func TestFillGaps_DailyScenario(t *testing.T) {
	series := []models.SeriesPoint{
		{Period: "2024-01-01", Value: 10},
		{Period: "2024-01-03", Value: 5},
	}
	got := FillGaps(series, "2024-01-01", "2024-01-03", models.Day, time.UTC)
	assert.Equal(t, []models.SeriesPoint{
		{Period: "2024-01-01", Value: 10},
		{Period: "2024-01-02", Value: 0},
		{Period: "2024-01-03", Value: 5},
	}, got)
}

func TestFillGaps_LengthIsExactDayCount(t *testing.T) {
	series := []models.SeriesPoint{{Period: "2024-02-10", Value: 1}, {Period: "2023-12-01", Value: 9}}
	got := FillGaps(series, "2024-02-01", "2024-03-01", models.Day, time.UTC)

	require.Len(t, got, 30) // 2024 est bissextile
	seen := map[string]bool{}
	for i, pt := range got {
		assert.False(t, seen[pt.Period], "doublon %s", pt.Period)
		seen[pt.Period] = true
		if i > 0 {
			assert.Less(t, got[i-1].Period, pt.Period)
		}
	}
	assert.False(t, seen["2023-12-01"], "point hors plage conservé")
}

func TestFillGaps_WeekAndMonth(t *testing.T) {
	weekly := []models.SeriesPoint{{Period: "2024-01-08", Value: 3}}
	got := FillGaps(weekly, "2024-01-03", "2024-01-20", models.Week, time.UTC)
	assert.Equal(t, []models.SeriesPoint{
		{Period: "2024-01-01", Value: 0},
		{Period: "2024-01-08", Value: 3},
		{Period: "2024-01-15", Value: 0},
	}, got)

	monthly := []models.SeriesPoint{{Period: "2024-02-01", Value: 7}}
	got = FillGaps(monthly, "2024-01-15", "2024-03-10", models.Month, time.UTC)
	assert.Equal(t, []models.SeriesPoint{
		{Period: "2024-01-01", Value: 0},
		{Period: "2024-02-01", Value: 7},
		{Period: "2024-03-01", Value: 0},
	}, got)
}

func TestFillGaps_EmptySeriesStaysEmpty(t *testing.T) {
	assert.Empty(t, FillGaps(nil, "2024-01-01", "2024-01-31", models.Day, time.UTC))
	assert.Empty(t, FillGaps([]models.SeriesPoint{}, "", "", models.Month, time.UTC))
}

func TestFillGaps_BadRangeReturnsInputAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	series := []models.SeriesPoint{{Period: "2024-01-05", Value: 2}}
	assert.Equal(t, series, FillGaps(series, "", "2024-01-31", models.Day, time.UTC))
	assert.Equal(t, series, FillGaps(series, "yesterday", "2024-01-31", models.Day, time.UTC))
	assert.Contains(t, buf.String(), "yesterday")
}

func TestFillGaps_DuplicateKeepsLast(t *testing.T) {
	series := []models.SeriesPoint{{Period: "2024-01-01", Value: 1}, {Period: "2024-01-01", Value: 4}}
	got := FillGaps(series, "2024-01-01", "2024-01-01", models.Day, time.UTC)
	assert.Equal(t, []models.SeriesPoint{{Period: "2024-01-01", Value: 4}}, got)
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2024-01-01", DayKey("2024-01-01", nil))
	assert.Equal(t, "2024-01-01", DayKey("2024-01-01T10:00:00Z", nil))
	assert.Equal(t, "", DayKey("", nil))
	loc := saoPaulo(t)
	assert.Equal(t, "2024-01-01", DayKey("2024-01-01T00:00:00Z", loc))
	assert.Equal(t, "2024-01-01", DayKey("2024-01-01T00:00:00.000Z", loc))
}
