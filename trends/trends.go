// Copyright 2025 Helvetic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package trends answers labor-market trend queries (employment,
// unemployment, wages, job postings, AI adoption) from the statistical
// series in refdata, with per-metric summaries and German-language insights.
package trends

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/helvetic-systems/laborsense/refdata"
)

// Metric names one trend series family.
type Metric string

const (
	MetricEmployment   Metric = "employment"
	MetricUnemployment Metric = "unemployment"
	MetricWages        Metric = "wages"
	MetricJobPostings  Metric = "job_postings"
	MetricAIAdoption   Metric = "ai_adoption"
)

// Direction classifies the overall movement of a series.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// directionThreshold is the overall percent change beyond which a series
// counts as moving rather than stable.
const directionThreshold = 5.0

// Filters are the normalized query filters a request resolved to.
type Filters struct {
	Industry  string `json:"industry,omitempty"`
	Canton    string `json:"canton,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
}

// Summary condenses a series into its latest movement.
type Summary struct {
	LatestValue   float64   `json:"latestValue"`
	PreviousValue float64   `json:"previousValue"`
	PercentChange float64   `json:"percentChange"`
	Trend         Direction `json:"trend"`
	Unit          string    `json:"unit"`
}

// Comparison relates a filtered series to the national one.
type Comparison struct {
	NationalAverage float64 `json:"nationalAverage"`
}

// Response is a complete trend answer.
type Response struct {
	Metric     Metric               `json:"metric"`
	Filters    Filters              `json:"filters"`
	Data       []refdata.TrendPoint `json:"data"`
	Summary    Summary              `json:"summary"`
	Comparison *Comparison          `json:"comparison,omitempty"`
	Insights   []string             `json:"insights"`
	Sources    []string             `json:"sources"`
}

// ValidMetric reports whether the metric has series data.
func ValidMetric(metric Metric) bool {
	switch metric {
	case MetricEmployment, MetricUnemployment, MetricWages, MetricJobPostings, MetricAIAdoption:
		return true
	}
	return false
}

// GetJobTrends answers a trend query. Industry input is standardized and
// canton input resolved to its code; when no series matches the filters the
// national "total" series answers instead. Timeframe accepts "2024",
// "2020-2024" or "last_N_years".
func GetJobTrends(metric Metric, industry, canton, timeframe string) Response {
	filters := Filters{Timeframe: timeframe}
	if industry != "" {
		filters.Industry = refdata.StandardizeIndustry(industry)
	}
	if canton != "" {
		if code, ok := refdata.NormalizeCantonCode(canton); ok {
			filters.Canton = code
		} else {
			filters.Canton = canton
		}
	}

	series := refdata.Trends(string(metric))

	key := "total"
	if filters.Industry != "" {
		if _, ok := series[filters.Industry]; ok {
			key = filters.Industry
		}
	}
	if key == "total" && filters.Canton != "" {
		if _, ok := series[filters.Canton]; ok {
			key = filters.Canton
		}
	}

	selected := series[key]
	data := filterByTimeframe(selected.Points, timeframe)

	summary := summarize(data, selected.Unit)
	insights := insights(metric, data, summary, filters.Industry)

	var comparison *Comparison
	if filters.Industry != "" && key != "total" {
		if national, ok := series["total"]; ok && len(national.Points) > 0 {
			comparison = &Comparison{
				NationalAverage: national.Points[len(national.Points)-1].Value,
			}
		}
	}

	return Response{
		Metric:     metric,
		Filters:    filters,
		Data:       data,
		Summary:    summary,
		Comparison: comparison,
		Insights:   insights,
		Sources: []string{
			"Bundesamt für Statistik (BFS)",
			"Staatssekretariat für Wirtschaft (SECO)",
			"Swiss AI Labor Market Knowledge Base",
		},
	}
}

var trendYearRe = regexp.MustCompile(`\d{4}`)
var trendRangeRe = regexp.MustCompile(`(\d{4})-(\d{4})`)
var trendNumberRe = regexp.MustCompile(`(\d+)`)

// filterByTimeframe keeps points whose period falls inside the requested
// year bounds. Points without a recognizable year always survive.
func filterByTimeframe(points []refdata.TrendPoint, timeframe string) []refdata.TrendPoint {
	startYear, endYear := parseTimeframe(timeframe)
	if startYear == 0 && endYear == 0 {
		return points
	}

	var out []refdata.TrendPoint
	for _, point := range points {
		match := trendYearRe.FindString(point.Period)
		if match == "" {
			out = append(out, point)
			continue
		}
		year, _ := strconv.Atoi(match)
		if startYear != 0 && year < startYear {
			continue
		}
		if endYear != 0 && year > endYear {
			continue
		}
		out = append(out, point)
	}
	return out
}

func parseTimeframe(timeframe string) (startYear, endYear int) {
	timeframe = strings.TrimSpace(timeframe)
	if timeframe == "" {
		return 0, 0
	}
	if m := trendRangeRe.FindStringSubmatch(timeframe); m != nil {
		startYear, _ = strconv.Atoi(m[1])
		endYear, _ = strconv.Atoi(m[2])
		return startYear, endYear
	}
	if strings.Contains(timeframe, "last") {
		years := 5
		if m := trendNumberRe.FindStringSubmatch(timeframe); m != nil {
			years, _ = strconv.Atoi(m[1])
		}
		current := time.Now().Year()
		return current - years, current
	}
	if m := trendYearRe.FindString(timeframe); m != "" {
		year, _ := strconv.Atoi(m)
		return year, year
	}
	return 0, 0
}

// summarize derives the latest movement: percent change against the
// previous point, and direction from the change over the whole series.
func summarize(data []refdata.TrendPoint, unit string) Summary {
	if len(data) == 0 {
		return Summary{Trend: DirectionStable}
	}

	latest := data[len(data)-1]
	previous := latest
	if len(data) > 1 {
		previous = data[len(data)-2]
	}
	first := data[0]

	percentChange := 0.0
	if previous.Value != 0 {
		percentChange = (latest.Value - previous.Value) / previous.Value * 100
	}
	overallChange := 0.0
	if first.Value != 0 {
		overallChange = (latest.Value - first.Value) / first.Value * 100
	}

	trend := DirectionStable
	if overallChange > directionThreshold {
		trend = DirectionIncreasing
	} else if overallChange < -directionThreshold {
		trend = DirectionDecreasing
	}

	return Summary{
		LatestValue:   latest.Value,
		PreviousValue: previous.Value,
		PercentChange: math.Round(percentChange*10) / 10,
		Trend:         trend,
		Unit:          unit,
	}
}

func insights(metric Metric, data []refdata.TrendPoint, summary Summary, industry string) []string {
	var out []string

	if len(data) == 0 {
		return []string{"Keine Daten für die angeforderten Filter verfügbar."}
	}

	switch metric {
	case MetricEmployment:
		if summary.Trend == DirectionIncreasing {
			sign := ""
			if summary.PercentChange > 0 {
				sign = "+"
			}
			out = append(out, fmt.Sprintf("Die Beschäftigung wächst kontinuierlich (%s%.1f%% zuletzt).", sign, summary.PercentChange))
			if industry == "Information und Kommunikation" {
				out = append(out, "Der IT-Sektor zeigt überdurchschnittliches Wachstum, getrieben durch Digitalisierung.")
			}
		} else if summary.Trend == DirectionDecreasing {
			out = append(out, fmt.Sprintf("Rückgang der Beschäftigung beobachtet (%.1f%%).", summary.PercentChange))
			if industry == "Finanzdienstleistungen" {
				out = append(out, "Finanzsektor zeigt Konsolidierung, teilweise durch AI-Automatisierung.")
			}
		}

	case MetricUnemployment:
		if summary.LatestValue < 3 {
			out = append(out, fmt.Sprintf("Arbeitslosenquote von %.1f%% entspricht Vollbeschäftigung.", summary.LatestValue))
		} else if summary.LatestValue > 4 {
			out = append(out, fmt.Sprintf("Erhöhte Arbeitslosigkeit von %.1f%% beobachtet.", summary.LatestValue))
		}
		out = append(out, "Schweizer Arbeitsmarkt bleibt robust im europäischen Vergleich.")

	case MetricWages:
		if summary.PercentChange > 0 {
			out = append(out, fmt.Sprintf("Löhne steigen (%.1f%% Veränderung).", summary.PercentChange))
		}
		if industry == "Information und Kommunikation" || industry == "Finanzdienstleistungen" {
			out = append(out, "Branche liegt deutlich über dem nationalen Median.")
		}

	case MetricAIAdoption:
		out = append(out, "AI-Adoption in der Schweiz beschleunigt sich signifikant.")
		if summary.LatestValue > 60 {
			out = append(out, "Mehrheit der Unternehmen nutzt bereits AI-Technologien.")
		}
		if industry != "" {
			out = append(out, fmt.Sprintf("%s gehört zu den führenden Branchen bei AI-Adoption.", industry))
		}

	case MetricJobPostings:
		if summary.Trend == DirectionDecreasing {
			out = append(out, "Rückgang bei Stelleninseraten deutet auf Normalisierung nach Post-COVID-Boom.")
		}
		out = append(out, "Qualität vor Quantität: Fokus auf spezialisierte Fachkräfte.")
	}

	return out
}
