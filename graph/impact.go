package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/refdata"
	"github.com/helvetic-systems/laborsense/store"
)

// JobTrend is the expected direction of employment for an entity.
type JobTrend string

const (
	TrendGrowing   JobTrend = "growing"
	TrendStable    JobTrend = "stable"
	TrendDeclining JobTrend = "declining"
)

// ImpactFactors are the individual signals feeding the composite score.
type ImpactFactors struct {
	AutomationPotential float64  `json:"automationPotential"` // 1-10
	AIMentions          int      `json:"aiMentions"`
	JobTrendDirection   JobTrend `json:"jobTrendDirection"`
	SkillsGapSeverity   float64  `json:"skillsGapSeverity"` // 1-10
	AdoptionRate        float64  `json:"adoptionRate"`      // 1-10
}

// ImpactScore is the computed AI impact assessment for one entity.
type ImpactScore struct {
	EntityID    string        `json:"entityId"`
	EntityType  EntityType    `json:"entityType"`
	EntityName  string        `json:"entityName"`
	Score       float64       `json:"score"`      // 1-10
	Confidence  float64       `json:"confidence"` // 0-1
	Factors     ImpactFactors `json:"factors"`
	Reasoning   string        `json:"reasoning"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

// Composite weights. The trend multiplier nudges declining areas up (more
// exposed) and growing areas down (AI grows the field rather than shrinking
// it); the result is clamped to [1, 10].
const (
	automationWeight = 0.35
	mentionsWeight   = 0.15
	skillsGapWeight  = 0.20
	adoptionWeight   = 0.30

	decliningMultiplier = 1.1
	growingMultiplier   = 0.9
)

// Scorer computes and stores impact scores for extracted entities.
// Only industries, job roles and AI technologies are scored.
type Scorer struct {
	extractor *Extractor
	scores    map[string]*ImpactScore
}

// NewScorer creates a scorer over the given extractor's entities.
func NewScorer(extractor *Extractor) *Scorer {
	return &Scorer{
		extractor: extractor,
		scores:    make(map[string]*ImpactScore),
	}
}

// Score computes the impact score for one entity and retains it.
func (sc *Scorer) Score(entity *Entity) *ImpactScore {
	factors := ImpactFactors{
		AutomationPotential: automationPotential(entity),
		AIMentions:          entity.MentionCount,
		JobTrendDirection:   jobTrend(entity),
		SkillsGapSeverity:   skillsGapSeverity(entity),
		AdoptionRate:        adoptionRate(entity),
	}

	score := compositeScore(factors)
	confidence := math.Min(1, 0.3+float64(len(entity.Sources))*0.15)

	impact := &ImpactScore{
		EntityID:    entity.ID,
		EntityType:  entity.Type,
		EntityName:  entity.Name,
		Score:       math.Round(score*10) / 10,
		Confidence:  math.Round(confidence*100) / 100,
		Factors:     factors,
		Reasoning:   reasoning(entity, factors, score),
		LastUpdated: time.Now().UTC(),
	}
	sc.scores[entity.ID] = impact
	return impact
}

// ScoreAll scores every industry, job role and AI technology entity.
func (sc *Scorer) ScoreAll() []*ImpactScore {
	var out []*ImpactScore
	for _, entity := range sc.extractor.All() {
		switch entity.Type {
		case EntityIndustry, EntityJobRole, EntityAITechnology:
			out = append(out, sc.Score(entity))
		}
	}
	return out
}

func automationPotential(entity *Entity) float64 {
	switch entity.Type {
	case EntityIndustry:
		if industry, ok := refdata.IndustryByName(entity.Name); ok {
			return industry.AutomationPotential
		}
	case EntityJobRole:
		if role, ok := refdata.JobRoleByName(entity.Name); ok {
			return role.AutomationPotential
		}
	case EntityAITechnology:
		return refdata.TechImpactWeight(entity.Name)
	}
	return refdata.DefaultAutomationPotential
}

// mentionsImpact maps a mention count onto a 1-10 impact step scale.
func mentionsImpact(mentions int) float64 {
	switch {
	case mentions <= 1:
		return 2
	case mentions <= 3:
		return 4
	case mentions <= 5:
		return 6
	case mentions <= 10:
		return 7
	default:
		return 8
	}
}

func jobTrend(entity *Entity) JobTrend {
	name := strings.ToLower(entity.Name)
	for _, keyword := range refdata.GrowingKeywords() {
		if strings.Contains(name, strings.ToLower(keyword)) {
			return TrendGrowing
		}
	}
	for _, keyword := range refdata.DecliningKeywords() {
		if strings.Contains(name, strings.ToLower(keyword)) {
			return TrendDeclining
		}
	}
	return TrendStable
}

func skillsGapSeverity(entity *Entity) float64 {
	name := strings.ToLower(entity.Name)
	for _, keyword := range refdata.SkillsGapKeywords() {
		if strings.Contains(name, strings.ToLower(keyword)) {
			return 7.5
		}
	}
	if entity.Type == EntityIndustry {
		if industry, ok := refdata.IndustryByName(entity.Name); ok {
			return industry.SkillsGap
		}
	}
	return 5.0
}

func adoptionRate(entity *Entity) float64 {
	switch entity.Type {
	case EntityIndustry:
		if industry, ok := refdata.IndustryByName(entity.Name); ok {
			return industry.AdoptionRate
		}
		return 5.5
	case EntityAITechnology:
		return refdata.TechImpactWeight(entity.Name)
	case EntitySkill:
		for _, skill := range refdata.Skills() {
			if skill.Name == entity.Name && skill.AIRelated {
				return 7.5
			}
		}
	}
	return 5.0
}

func compositeScore(factors ImpactFactors) float64 {
	multiplier := 1.0
	switch factors.JobTrendDirection {
	case TrendDeclining:
		multiplier = decliningMultiplier
	case TrendGrowing:
		multiplier = growingMultiplier
	}

	raw := (factors.AutomationPotential*automationWeight +
		mentionsImpact(factors.AIMentions)*mentionsWeight +
		factors.SkillsGapSeverity*skillsGapWeight +
		factors.AdoptionRate*adoptionWeight) * multiplier

	return math.Max(1, math.Min(10, raw))
}

func reasoning(entity *Entity, factors ImpactFactors, score float64) string {
	var parts []string

	switch entity.Type {
	case EntityIndustry:
		parts = append(parts, fmt.Sprintf("Industry %q has an automation potential of %.1f/10.",
			entity.Name, factors.AutomationPotential))
	case EntityJobRole:
		parts = append(parts, fmt.Sprintf("Job role %q has an automation potential of %.1f/10.",
			entity.Name, factors.AutomationPotential))
	case EntityAITechnology:
		parts = append(parts, fmt.Sprintf("AI technology %q has significant transformative potential.",
			entity.Name))
	}

	switch factors.JobTrendDirection {
	case TrendGrowing:
		parts = append(parts, "Jobs in this area are expected to grow.")
	case TrendDeclining:
		parts = append(parts, "Jobs in this area may face pressure from automation.")
	}

	if factors.SkillsGapSeverity >= 7 {
		parts = append(parts, "There is a significant skills gap requiring upskilling initiatives.")
	}
	if factors.AdoptionRate >= 7 {
		parts = append(parts, "AI adoption in this area is progressing rapidly in Switzerland.")
	}

	parts = append(parts, fmt.Sprintf("Overall AI impact score: %.1f/10.", score))
	return strings.Join(parts, " ")
}

// Get returns the retained score for an entity ID.
func (sc *Scorer) Get(entityID string) (*ImpactScore, bool) {
	score, ok := sc.scores[entityID]
	return score, ok
}

// All returns every retained score, sorted by entity ID.
func (sc *Scorer) All() []*ImpactScore {
	out := make([]*ImpactScore, 0, len(sc.scores))
	for _, score := range sc.scores {
		out = append(out, score)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// TopImpacted returns the highest-scored entities, optionally restricted to
// one entity type (empty matches all).
func (sc *Scorer) TopImpacted(limit int, entityType EntityType) []*ImpactScore {
	scores := sc.All()
	if entityType != "" {
		filtered := scores[:0]
		for _, score := range scores {
			if score.EntityType == entityType {
				filtered = append(filtered, score)
			}
		}
		scores = filtered
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

// TypeSummary aggregates scores per entity type.
type TypeSummary struct {
	Count    int     `json:"count"`
	AvgScore float64 `json:"avgScore"`
}

// Summary returns score count and average per entity type.
func (sc *Scorer) Summary() map[EntityType]TypeSummary {
	totals := make(map[EntityType]float64)
	counts := make(map[EntityType]int)
	for _, score := range sc.scores {
		totals[score.EntityType] += score.Score
		counts[score.EntityType]++
	}

	out := make(map[EntityType]TypeSummary, len(counts))
	for entityType, count := range counts {
		out[entityType] = TypeSummary{
			Count:    count,
			AvgScore: math.Round(totals[entityType]/float64(count)*10) / 10,
		}
	}
	return out
}

// SaveToStore writes each score as an impact document plus a
// HAS_IMPACT_SCORE relation from the entity to its score document.
func (sc *Scorer) SaveToStore(st *store.Store) int {
	scores := sc.All()

	docs := make([]*core.Document, 0, len(scores))
	for _, score := range scores {
		scoreID := "impact:" + score.EntityID
		docs = append(docs, &core.Document{
			ID: scoreID,
			Content: fmt.Sprintf("AI Impact Score for %s: %.1f/10. %s",
				score.EntityName, score.Score, score.Reasoning),
			Metadata: core.Metadata{
				Source: "impact_scoring",
				Title:  "AI Impact: " + score.EntityName,
				Tags:   []string{"impact_score", string(score.EntityType)},
				Extra: map[string]any{
					"entityId":            score.EntityID,
					"entityType":          string(score.EntityType),
					"entityName":          score.EntityName,
					"score":               score.Score,
					"confidence":          score.Confidence,
					"automationPotential": score.Factors.AutomationPotential,
					"jobTrend":            string(score.Factors.JobTrendDirection),
					"skillsGap":           score.Factors.SkillsGapSeverity,
					"adoptionRate":        score.Factors.AdoptionRate,
				},
			},
		})
	}
	st.InsertBatch(docs)

	for _, score := range scores {
		st.CreateRelation(score.EntityID, "impact:"+score.EntityID, "HAS_IMPACT_SCORE", map[string]any{
			"score":      score.Score,
			"confidence": score.Confidence,
		})
	}
	return len(scores)
}

// LinkEntities creates the static relationship structure between extracted
// entities: technologies IMPACT industries, industries EMPLOY job roles, and
// skills are REQUIRED_FOR job roles, all driven by the reference tables.
func (sc *Scorer) LinkEntities(st *store.Store) int {
	industries := sc.extractor.ByType(EntityIndustry)
	jobRoles := sc.extractor.ByType(EntityJobRole)
	technologies := sc.extractor.ByType(EntityAITechnology)
	skills := sc.extractor.ByType(EntitySkill)

	roleByName := make(map[string]*Entity, len(jobRoles))
	for _, role := range jobRoles {
		roleByName[role.Name] = role
	}

	created := 0
	for _, tech := range technologies {
		for _, industry := range industries {
			st.CreateRelation(tech.ID, industry.ID, "IMPACTS", map[string]any{
				"weight": refdata.TechImpactWeight(tech.Name),
			})
			created++
		}
	}

	for _, industry := range industries {
		table, ok := refdata.IndustryByName(industry.Name)
		if !ok {
			continue
		}
		for _, roleName := range table.Employs {
			role, ok := roleByName[roleName]
			if !ok {
				continue
			}
			st.CreateRelation(industry.ID, role.ID, "EMPLOYS", map[string]any{
				"relevance": 0.8,
			})
			created++
		}
	}

	for _, skill := range skills {
		var table refdata.Skill
		for _, s := range refdata.Skills() {
			if s.Name == skill.Name {
				table = s
				break
			}
		}
		for _, roleName := range table.Roles {
			role, ok := roleByName[roleName]
			if !ok {
				continue
			}
			st.CreateRelation(skill.ID, role.ID, "REQUIRED_FOR", map[string]any{
				"importance": 0.7,
			})
			created++
		}
	}

	return created
}
