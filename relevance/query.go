package relevance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/helvetic-systems/laborsense/refdata"
)

var (
	yearRangeRe = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
	yearRe      = regexp.MustCompile(`^(\d{4})$`)
	numberRe    = regexp.MustCompile(`(\d+)`)
)

// ParseTimeframe resolves a timeframe string into inclusive year bounds:
// "2024" and "2020-2024" are literal, "last_N_years" is relative to the
// current year. Unrecognized input yields no bounds.
func ParseTimeframe(timeframe string) (from, to string) {
	timeframe = strings.TrimSpace(timeframe)
	if timeframe == "" {
		return "", ""
	}

	if m := yearRangeRe.FindStringSubmatch(timeframe); m != nil {
		return m[1], m[2]
	}
	if m := yearRe.FindStringSubmatch(timeframe); m != nil {
		return m[1], m[1]
	}
	if strings.Contains(timeframe, "last") {
		years := 1
		if m := numberRe.FindStringSubmatch(timeframe); m != nil {
			years, _ = strconv.Atoi(m[1])
		}
		currentYear := time.Now().Year()
		return strconv.Itoa(currentYear - years), strconv.Itoa(currentYear)
	}
	return "", ""
}

// queryVariations translates common German/English labor-market terms in
// both directions, yielding up to three alternate queries.
func queryVariations(query string) []string {
	var variations []string
	low := strings.ToLower(query)

	for from, to := range refdata.QueryTranslations() {
		if !strings.Contains(low, from) {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(from))
		if err != nil {
			continue
		}
		variations = append(variations, re.ReplaceAllString(query, to))
		if len(variations) == 3 {
			break
		}
	}
	return variations
}

// suggestions proposes follow-up queries when a search came back thin.
func suggestions(query string, filters Filters) []string {
	var out []string

	if filters.Industry != "" || filters.Canton != "" {
		out = append(out, fmt.Sprintf("Try searching %q without filters for more results", query))
	}

	low := strings.ToLower(query)
	if strings.Contains(low, "ai") || strings.Contains(low, "ki") {
		out = append(out, `Try: "AI Automatisierung Arbeitsmarkt Schweiz"`)
	}
	if strings.Contains(low, "job") || strings.Contains(low, "arbeit") {
		out = append(out, `Try: "Beschäftigung Trends Schweiz"`)
	}

	out = append(out, "Add an industry filter: Finanzdienstleistungen, IT, Pharma")

	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
