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


// Package refdata holds the static lookup tables of the knowledge base:
// Swiss cantons, industry names and aliases, job role patterns, skills, AI
// technologies and their impact weights, keyword lists, default news feeds,
// and the labor-market trend series. The tables are embedded TOML, parsed
// once on first access, and contain no logic.
package refdata

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed tables/*.toml
var tables embed.FS

// Industry is one standardized Swiss industry with its matching aliases and
// impact factor estimates.
type Industry struct {
	Name                string   `toml:"name"`
	Aliases             []string `toml:"aliases"`
	AutomationPotential float64  `toml:"automation_potential"`
	AdoptionRate        float64  `toml:"adoption_rate"`
	SkillsGap           float64  `toml:"skills_gap"`
	Employs             []string `toml:"employs"`
}

// JobRole is one standardized job role with its matching aliases.
type JobRole struct {
	Name                string   `toml:"name"`
	Aliases             []string `toml:"aliases"`
	AutomationPotential float64  `toml:"automation_potential"`
}

// Skill is one skill pattern; Roles names the job roles it is required for.
type Skill struct {
	Name      string   `toml:"name"`
	Roles     []string `toml:"roles"`
	AIRelated bool     `toml:"ai_related"`
}

// AITechnology is one AI technology pattern with its impact weight.
type AITechnology struct {
	Name         string  `toml:"name"`
	ImpactWeight float64 `toml:"impact_weight"`
}

// Feed is one news source with its RSS/Atom feed URLs.
type Feed struct {
	Key  string   `toml:"key"`
	Name string   `toml:"name"`
	URLs []string `toml:"urls"`
}

// TrendPoint is one observation in a trend series.
type TrendPoint struct {
	Period string  `toml:"period" json:"period"`
	Value  float64 `toml:"value" json:"value"`
}

// TrendSeries is one metric series. Key is "total" for the national series,
// otherwise an industry name or canton code.
type TrendSeries struct {
	Metric string       `toml:"metric"`
	Key    string       `toml:"key"`
	Unit   string       `toml:"unit"`
	Points []TrendPoint `toml:"points"`
}

// DefaultTechWeight is the impact weight for AI technologies without an
// explicit entry, and DefaultAutomationPotential the automation potential
// for entities without one.
const (
	DefaultTechWeight          = 6.0
	DefaultAutomationPotential = 5.0
)

type data struct {
	cantons      map[string]string
	industries   []Industry
	jobRoles     []JobRole
	skills       []Skill
	technologies []AITechnology
	feeds        []Feed
	series       []TrendSeries

	aiKeywords        []string
	laborKeywords     []string
	growingKeywords   []string
	decliningKeywords []string
	skillsGapKeywords []string
	translations      map[string]string
}

var (
	loadOnce sync.Once
	loaded   *data
)

// load parses the embedded tables. The tables are compiled into the binary,
// so a parse failure is a build defect and panics.
func load() *data {
	loadOnce.Do(func() {
		d := &data{}

		var cantonsDoc struct {
			Cantons map[string]string `toml:"cantons"`
		}
		mustParse("tables/cantons.toml", &cantonsDoc)
		d.cantons = cantonsDoc.Cantons

		var industriesDoc struct {
			Industries []Industry `toml:"industries"`
		}
		mustParse("tables/industries.toml", &industriesDoc)
		d.industries = industriesDoc.Industries

		var rolesDoc struct {
			Roles []JobRole `toml:"roles"`
		}
		mustParse("tables/job_roles.toml", &rolesDoc)
		d.jobRoles = rolesDoc.Roles

		var skillsDoc struct {
			Skills []Skill `toml:"skills"`
		}
		mustParse("tables/skills.toml", &skillsDoc)
		d.skills = skillsDoc.Skills

		var techDoc struct {
			Technologies []AITechnology `toml:"technologies"`
		}
		mustParse("tables/ai_technologies.toml", &techDoc)
		d.technologies = techDoc.Technologies

		var feedsDoc struct {
			Feeds []Feed `toml:"feeds"`
		}
		mustParse("tables/feeds.toml", &feedsDoc)
		d.feeds = feedsDoc.Feeds

		var trendsDoc struct {
			Series []TrendSeries `toml:"series"`
		}
		mustParse("tables/trends.toml", &trendsDoc)
		d.series = trendsDoc.Series

		var keywordsDoc struct {
			AI           []string          `toml:"ai"`
			Labor        []string          `toml:"labor"`
			Growing      []string          `toml:"growing"`
			Declining    []string          `toml:"declining"`
			SkillsGap    []string          `toml:"skills_gap"`
			Translations map[string]string `toml:"translations"`
		}
		mustParse("tables/keywords.toml", &keywordsDoc)
		d.aiKeywords = keywordsDoc.AI
		d.laborKeywords = keywordsDoc.Labor
		d.growingKeywords = keywordsDoc.Growing
		d.decliningKeywords = keywordsDoc.Declining
		d.skillsGapKeywords = keywordsDoc.SkillsGap
		d.translations = keywordsDoc.Translations

		loaded = d
	})
	return loaded
}

func mustParse(name string, out any) {
	raw, err := tables.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("refdata: missing embedded table %s: %v", name, err))
	}
	if err := toml.Unmarshal(raw, out); err != nil {
		panic(fmt.Sprintf("refdata: malformed table %s: %v", name, err))
	}
}

// Cantons returns the canton code to German name map.
func Cantons() map[string]string {
	return load().cantons
}

// CantonName resolves a canton code to its full name.
func CantonName(code string) (string, bool) {
	name, ok := load().cantons[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// NormalizeCantonName maps a canton code or name to the full canton name.
// Unknown input returns ("", false).
func NormalizeCantonName(input string) (string, bool) {
	if name, ok := CantonName(input); ok {
		return name, true
	}
	trimmed := strings.TrimSpace(input)
	for _, name := range load().cantons {
		if strings.EqualFold(name, trimmed) {
			return name, true
		}
	}
	return "", false
}

// NormalizeCantonCode maps a canton code or full name to the canton code.
// Unknown input returns ("", false).
func NormalizeCantonCode(input string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(input))
	if _, ok := load().cantons[upper]; ok {
		return upper, true
	}
	for code, name := range load().cantons {
		if strings.EqualFold(name, strings.TrimSpace(input)) {
			return code, true
		}
	}
	return "", false
}

// Industries returns the standardized industry table.
func Industries() []Industry {
	return load().industries
}

// IndustryByName looks up an industry by its standardized name.
func IndustryByName(name string) (Industry, bool) {
	for _, industry := range load().industries {
		if industry.Name == name {
			return industry, true
		}
	}
	return Industry{}, false
}

// StandardizeIndustry maps free-form industry input to the standardized
// industry name by substring matching the name and all aliases. Unmatched
// input is returned unchanged.
func StandardizeIndustry(input string) string {
	low := strings.ToLower(input)
	for _, industry := range load().industries {
		if strings.Contains(low, strings.ToLower(industry.Name)) {
			return industry.Name
		}
		for _, alias := range industry.Aliases {
			if strings.Contains(low, strings.ToLower(alias)) {
				return industry.Name
			}
		}
	}
	return input
}

// JobRoles returns the job role table.
func JobRoles() []JobRole {
	return load().jobRoles
}

// JobRoleByName looks up a job role by its standardized name.
func JobRoleByName(name string) (JobRole, bool) {
	for _, role := range load().jobRoles {
		if role.Name == name {
			return role, true
		}
	}
	return JobRole{}, false
}

// Skills returns the skill table.
func Skills() []Skill {
	return load().skills
}

// AITechnologies returns the AI technology table.
func AITechnologies() []AITechnology {
	return load().technologies
}

// TechImpactWeight returns the impact weight for an AI technology name,
// falling back to DefaultTechWeight for unknown technologies.
func TechImpactWeight(name string) float64 {
	for _, tech := range load().technologies {
		if strings.EqualFold(tech.Name, name) {
			if tech.ImpactWeight > 0 {
				return tech.ImpactWeight
			}
			return DefaultTechWeight
		}
	}
	return DefaultTechWeight
}

// Feeds returns the default news feed sources.
func Feeds() []Feed {
	return load().feeds
}

// AIKeywords returns the AI relevance keyword list.
func AIKeywords() []string {
	return load().aiKeywords
}

// LaborKeywords returns the labor-market relevance keyword list.
func LaborKeywords() []string {
	return load().laborKeywords
}

// GrowingKeywords returns the keywords marking growing job trends.
func GrowingKeywords() []string {
	return load().growingKeywords
}

// DecliningKeywords returns the keywords marking declining job trends.
func DecliningKeywords() []string {
	return load().decliningKeywords
}

// SkillsGapKeywords returns the keywords marking a severe skills gap.
func SkillsGapKeywords() []string {
	return load().skillsGapKeywords
}

// QueryTranslations returns the German/English term translation map used to
// widen searches.
func QueryTranslations() map[string]string {
	return load().translations
}

// Trends returns every series for a metric, keyed by series key.
func Trends(metric string) map[string]TrendSeries {
	out := make(map[string]TrendSeries)
	for _, series := range load().series {
		if series.Metric == metric {
			out[series.Key] = series
		}
	}
	return out
}

// TrendMetrics lists the metrics that have at least one series.
func TrendMetrics() []string {
	seen := make(map[string]bool)
	var metrics []string
	for _, series := range load().series {
		if !seen[series.Metric] {
			seen[series.Metric] = true
			metrics = append(metrics, series.Metric)
		}
	}
	return metrics
}
