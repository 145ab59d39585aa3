package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/store"
)

func industryEntity(name string, mentions int, sources ...string) *Entity {
	return &Entity{
		ID:             EntityID(EntityIndustry, NormalizeName(name)),
		Type:           EntityIndustry,
		Name:           name,
		NormalizedName: NormalizeName(name),
		MentionCount:   mentions,
		Sources:        sources,
	}
}

func TestScorer_IndustryComposite(t *testing.T) {
	sc := NewScorer(NewExtractor())

	// Finanzdienstleistungen: automation 7.5, skills gap 7.0, adoption 8.0,
	// one mention (step 2), stable trend.
	// 7.5*0.35 + 2*0.15 + 7.0*0.20 + 8.0*0.30 = 6.725
	impact := sc.Score(industryEntity("Finanzdienstleistungen", 1, "doc-1"))

	assert.InDelta(t, 6.7, impact.Score, 1e-9)
	assert.InDelta(t, 0.45, impact.Confidence, 1e-9, "0.3 base + 0.15 per source")
	assert.Equal(t, TrendStable, impact.Factors.JobTrendDirection)
	assert.Equal(t, 7.5, impact.Factors.AutomationPotential)
	assert.NotEmpty(t, impact.Reasoning)
}

func TestScorer_DecliningRoleMultiplier(t *testing.T) {
	sc := NewScorer(NewExtractor())

	// Accountant: automation 8.0, defaults 5.0 for gap and adoption,
	// declining trend applies the 1.1 multiplier.
	// (8.0*0.35 + 2*0.15 + 5.0*0.20 + 5.0*0.30) * 1.1 = 6.16
	impact := sc.Score(&Entity{
		ID: EntityID(EntityJobRole, "accountant"), Type: EntityJobRole,
		Name: "Accountant", MentionCount: 1, Sources: []string{"doc-1"},
	})

	assert.Equal(t, TrendDeclining, impact.Factors.JobTrendDirection)
	assert.InDelta(t, 6.2, impact.Score, 1e-9)
}

func TestScorer_GrowingRoleMultiplier(t *testing.T) {
	sc := NewScorer(NewExtractor())

	// Data Scientist: automation 5.0, skills gap keyword "Data" -> 7.5,
	// growing trend applies the 0.9 multiplier.
	// (5.0*0.35 + 2*0.15 + 7.5*0.20 + 5.0*0.30) * 0.9 = 4.545
	impact := sc.Score(&Entity{
		ID: EntityID(EntityJobRole, "data_scientist"), Type: EntityJobRole,
		Name: "Data Scientist", MentionCount: 1, Sources: []string{"doc-1"},
	})

	assert.Equal(t, TrendGrowing, impact.Factors.JobTrendDirection)
	assert.InDelta(t, 7.5, impact.Factors.SkillsGapSeverity, 1e-9)
	assert.InDelta(t, 4.5, impact.Score, 1e-9)
}

func TestMentionsImpact_Steps(t *testing.T) {
	assert.Equal(t, 2.0, mentionsImpact(0))
	assert.Equal(t, 2.0, mentionsImpact(1))
	assert.Equal(t, 4.0, mentionsImpact(3))
	assert.Equal(t, 6.0, mentionsImpact(5))
	assert.Equal(t, 7.0, mentionsImpact(10))
	assert.Equal(t, 8.0, mentionsImpact(11))
}

func TestCompositeScore_Clamped(t *testing.T) {
	high := compositeScore(ImpactFactors{
		AutomationPotential: 10,
		AIMentions:          100,
		JobTrendDirection:   TrendDeclining,
		SkillsGapSeverity:   10,
		AdoptionRate:        10,
	})
	assert.Equal(t, 10.0, high)

	low := compositeScore(ImpactFactors{JobTrendDirection: TrendStable})
	assert.Equal(t, 1.0, low)
}

func TestScorer_ConfidenceCapped(t *testing.T) {
	sc := NewScorer(NewExtractor())

	impact := sc.Score(industryEntity("Handel", 1, "a", "b", "c", "d", "e", "f"))
	assert.Equal(t, 1.0, impact.Confidence)
}

func TestScorer_ScoreAllSkipsLocationsAndSkills(t *testing.T) {
	x := NewExtractor()
	x.Extract("Die Bank in Zürich nutzt Excel.", core.Metadata{}, "doc-1")

	sc := NewScorer(x)
	for _, impact := range sc.ScoreAll() {
		assert.NotEqual(t, EntityLocation, impact.EntityType)
		assert.NotEqual(t, EntitySkill, impact.EntityType)
	}
}

func TestScorer_TopImpacted(t *testing.T) {
	sc := NewScorer(NewExtractor())
	sc.Score(industryEntity("Finanzdienstleistungen", 1, "doc-1")) // 6.7
	sc.Score(industryEntity("Erziehung und Unterricht", 1, "doc-1"))
	sc.Score(&Entity{
		ID: EntityID(EntityJobRole, "accountant"), Type: EntityJobRole,
		Name: "Accountant", MentionCount: 1, Sources: []string{"doc-1"},
	})

	top := sc.TopImpacted(2, "")
	require.Len(t, top, 2)
	assert.GreaterOrEqual(t, top[0].Score, top[1].Score)

	industriesOnly := sc.TopImpacted(10, EntityIndustry)
	require.Len(t, industriesOnly, 2)
	assert.Equal(t, "Finanzdienstleistungen", industriesOnly[0].EntityName)
}

func TestScorer_Summary(t *testing.T) {
	sc := NewScorer(NewExtractor())
	sc.Score(industryEntity("Finanzdienstleistungen", 1, "doc-1"))
	sc.Score(industryEntity("Handel", 1, "doc-1"))

	summary := sc.Summary()
	require.Contains(t, summary, EntityIndustry)
	assert.Equal(t, 2, summary[EntityIndustry].Count)
	assert.Greater(t, summary[EntityIndustry].AvgScore, 0.0)
}

func TestScorer_SaveToStore(t *testing.T) {
	st := store.New(t.TempDir())
	defer st.Close()

	sc := NewScorer(NewExtractor())
	sc.Score(industryEntity("Finanzdienstleistungen", 1, "doc-1"))

	saved := sc.SaveToStore(st)
	assert.Equal(t, 1, saved)

	entityID := EntityID(EntityIndustry, "finanzdienstleistungen")
	doc, ok := st.Get("impact:" + entityID)
	require.True(t, ok)
	assert.Equal(t, "impact_scoring", doc.Metadata.Source)
	assert.Contains(t, doc.Metadata.Tags, "impact_score")
	assert.Equal(t, 6.7, doc.Metadata.Extra["score"])

	rels := st.GetRelations(entityID, "HAS_IMPACT_SCORE")
	require.Len(t, rels, 1)
	assert.Equal(t, "impact:"+entityID, rels[0].To)
}

func TestScorer_LinkEntities(t *testing.T) {
	st := store.New(t.TempDir())
	defer st.Close()

	x := NewExtractor()
	// Matches the Finanzdienstleistungen industry (metadata), the Accountant
	// role, the Excel skill, and the AI technology.
	x.Extract("Der Accountant nutzt Excel und AI.", core.Metadata{Industry: "banking"}, "doc-1")

	sc := NewScorer(x)
	created := sc.LinkEntities(st)
	assert.Equal(t, 3, created)

	accountantID := EntityID(EntityJobRole, "accountant")
	assert.Len(t, st.GetRelations(accountantID, "EMPLOYS"), 1)
	assert.Len(t, st.GetRelations(accountantID, "REQUIRED_FOR"), 1)
	assert.Len(t, st.GetRelations(EntityID(EntityAITechnology, "ai"), "IMPACTS"), 1)
}
