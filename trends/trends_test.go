package trends

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helvetic-systems/laborsense/refdata"
)

func points(values ...float64) []refdata.TrendPoint {
	out := make([]refdata.TrendPoint, len(values))
	for i, value := range values {
		out[i] = refdata.TrendPoint{Period: fmt.Sprintf("p%d", i), Value: value}
	}
	return out
}

func TestValidMetric(t *testing.T) {
	assert.True(t, ValidMetric(MetricEmployment))
	assert.True(t, ValidMetric(MetricAIAdoption))
	assert.False(t, ValidMetric("weather"))
}

func TestGetJobTrends_NationalEmployment(t *testing.T) {
	resp := GetJobTrends(MetricEmployment, "", "", "")

	assert.Equal(t, MetricEmployment, resp.Metric)
	require.NotEmpty(t, resp.Data)
	assert.Equal(t, 5560000.0, resp.Summary.LatestValue)
	assert.Equal(t, 5540000.0, resp.Summary.PreviousValue)
	assert.InDelta(t, 0.4, resp.Summary.PercentChange, 1e-9)
	assert.Equal(t, DirectionIncreasing, resp.Summary.Trend)
	assert.Equal(t, "Beschäftigte", resp.Summary.Unit)
	assert.Nil(t, resp.Comparison)
	assert.NotEmpty(t, resp.Sources)
}

func TestGetJobTrends_IndustryAliasAndComparison(t *testing.T) {
	resp := GetJobTrends(MetricEmployment, "banking", "", "")

	assert.Equal(t, "Finanzdienstleistungen", resp.Filters.Industry)
	assert.Equal(t, 214000.0, resp.Summary.LatestValue)
	assert.InDelta(t, -0.5, resp.Summary.PercentChange, 1e-9)
	// Overall change of -1.8% stays inside the stability band.
	assert.Equal(t, DirectionStable, resp.Summary.Trend)

	require.NotNil(t, resp.Comparison)
	assert.Equal(t, 5560000.0, resp.Comparison.NationalAverage)
}

func TestGetJobTrends_CantonNameResolvesToCode(t *testing.T) {
	resp := GetJobTrends(MetricUnemployment, "", "Zürich", "")

	assert.Equal(t, "ZH", resp.Filters.Canton)
	assert.Equal(t, 2.3, resp.Summary.LatestValue)
	assert.Contains(t, resp.Insights[0], "Vollbeschäftigung")
}

func TestGetJobTrends_UnknownIndustryFallsBackToNational(t *testing.T) {
	resp := GetJobTrends(MetricEmployment, "Unterwasserkorbflechterei", "", "")

	assert.Equal(t, "Unterwasserkorbflechterei", resp.Filters.Industry)
	assert.Equal(t, 5560000.0, resp.Summary.LatestValue, "national series answers")
	assert.Nil(t, resp.Comparison)
}

func TestGetJobTrends_SingleYearTimeframe(t *testing.T) {
	resp := GetJobTrends(MetricWages, "", "", "2023")

	require.Len(t, resp.Data, 1)
	assert.Equal(t, 6788.0, resp.Summary.LatestValue)
	assert.Equal(t, 6788.0, resp.Summary.PreviousValue)
	assert.Zero(t, resp.Summary.PercentChange)
	assert.Equal(t, DirectionStable, resp.Summary.Trend)
}

func TestGetJobTrends_YearRangeTimeframe(t *testing.T) {
	resp := GetJobTrends(MetricWages, "", "", "2021-2023")

	require.Len(t, resp.Data, 3)
	assert.Equal(t, "2021", resp.Data[0].Period)
	assert.Equal(t, "2023", resp.Data[2].Period)
	assert.InDelta(t, 1.8, resp.Summary.PercentChange, 1e-9)
}

func TestGetJobTrends_LastYearsTimeframe(t *testing.T) {
	resp := GetJobTrends(MetricWages, "", "", "last_10_years")

	assert.Len(t, resp.Data, 5, "all points fall inside the window")
}

func TestGetJobTrends_EmptyTimeframeWindow(t *testing.T) {
	resp := GetJobTrends(MetricWages, "", "", "1990")

	assert.Empty(t, resp.Data)
	assert.Equal(t, DirectionStable, resp.Summary.Trend)
	require.Len(t, resp.Insights, 1)
	assert.Contains(t, resp.Insights[0], "Keine Daten")
}

func TestGetJobTrends_AIAdoptionInsights(t *testing.T) {
	resp := GetJobTrends(MetricAIAdoption, "IT", "", "")

	assert.Equal(t, "Information und Kommunikation", resp.Filters.Industry)
	assert.Equal(t, 89.0, resp.Summary.LatestValue)
	assert.Equal(t, DirectionIncreasing, resp.Summary.Trend)

	joined := ""
	for _, insight := range resp.Insights {
		joined += insight + " "
	}
	assert.Contains(t, joined, "beschleunigt")
	assert.Contains(t, joined, "Mehrheit")
	assert.Contains(t, joined, "Information und Kommunikation")
}

func TestSummarize_DirectionBand(t *testing.T) {
	stable := summarize(points(100, 104), "u")
	assert.Equal(t, DirectionStable, stable.Trend, "4% overall change is stable")

	up := summarize(points(100, 106), "u")
	assert.Equal(t, DirectionIncreasing, up.Trend)

	down := summarize(points(100, 94), "u")
	assert.Equal(t, DirectionDecreasing, down.Trend)
}
