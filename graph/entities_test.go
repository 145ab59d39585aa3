package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/store"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "data_scientist", NormalizeName("  Data Scientist! "))
	assert.Equal(t, "künstliche_intelligenz", NormalizeName("Künstliche Intelligenz"))
	assert.Equal(t, "zürich", NormalizeName("Zürich"))
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "entity:industry:finanzdienstleistungen",
		EntityID(EntityIndustry, "finanzdienstleistungen"))
}

func TestExtractor_ContentMatches(t *testing.T) {
	x := NewExtractor()

	out := x.Extract("Die Bank in Zürich setzt auf Machine Learning.", core.Metadata{}, "doc-1")

	require.Len(t, out.Industries, 1, "alias 'bank' maps to the standardized industry")
	assert.Equal(t, "Finanzdienstleistungen", out.Industries[0].Name)

	names := entityNames(out.Locations)
	assert.Contains(t, names, "Zürich")
	assert.Contains(t, names, "Schweiz", "Switzerland is the ambient location of every document")

	require.Len(t, out.AITechnologies, 1)
	assert.Equal(t, "Machine Learning", out.AITechnologies[0].Name)

	require.Len(t, out.Skills, 1)
	assert.Equal(t, "Machine Learning", out.Skills[0].Name)
}

func TestExtractor_MetadataCountsAsMention(t *testing.T) {
	x := NewExtractor()

	out := x.Extract("Kein verwertbarer Inhalt.", core.Metadata{
		Industry: "healthcare",
		Canton:   "ZH",
	}, "doc-1")

	require.Len(t, out.Industries, 1)
	assert.Equal(t, "Gesundheits- und Sozialwesen", out.Industries[0].Name)

	names := entityNames(out.Locations)
	assert.Contains(t, names, "Zürich", "canton code resolves to the full name")
}

func TestExtractor_MergesAcrossDocuments(t *testing.T) {
	x := NewExtractor()

	x.Extract("Die Bank wächst.", core.Metadata{}, "doc-1")
	x.Extract("Die Bank schrumpft.", core.Metadata{}, "doc-2")
	x.Extract("Die Bank bleibt.", core.Metadata{}, "doc-2") // same source again

	industries := x.ByType(EntityIndustry)
	require.Len(t, industries, 1)
	assert.Equal(t, 3, industries[0].MentionCount)
	assert.Equal(t, []string{"doc-1", "doc-2"}, industries[0].Sources, "sources stay unique")
}

func TestExtractor_RecordsJobRoleAlias(t *testing.T) {
	x := NewExtractor()

	out := x.Extract("Der Softwareentwickler arbeitet remote.", core.Metadata{}, "doc-1")

	require.Len(t, out.JobRoles, 1)
	assert.Equal(t, "Software Developer", out.JobRoles[0].Name)
	assert.Contains(t, out.JobRoles[0].Aliases, "Softwareentwickler")
}

func TestExtractor_AllSortedByID(t *testing.T) {
	x := NewExtractor()
	x.Extract("Die Bank in Zürich setzt auf Machine Learning.", core.Metadata{}, "doc-1")

	all := x.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestExtractor_Reset(t *testing.T) {
	x := NewExtractor()
	x.Extract("Die Bank.", core.Metadata{}, "doc-1")
	require.NotEmpty(t, x.All())

	x.Reset()
	assert.Empty(t, x.All())
}

func TestExtractor_SaveToStore(t *testing.T) {
	st := store.New(t.TempDir())
	defer st.Close()

	x := NewExtractor()
	x.Extract("Die Bank.", core.Metadata{}, "doc-1")
	x.Extract("Die Bank.", core.Metadata{}, "doc-2")

	saved := x.SaveToStore(st)
	assert.Equal(t, len(x.All()), saved)

	doc, ok := st.Get("entity:industry:finanzdienstleistungen")
	require.True(t, ok)
	assert.Equal(t, "entity_extraction", doc.Metadata.Source)
	assert.Equal(t, "Finanzdienstleistungen", doc.Metadata.Title)
	assert.Contains(t, doc.Metadata.Tags, "entity")
	assert.Equal(t, 2, doc.Metadata.Extra["mentionCount"])
	assert.Equal(t, "doc-1, doc-2", doc.Metadata.Extra["sources"])
}

func entityNames(entities []*Entity) []string {
	var names []string
	for _, entity := range entities {
		names = append(names, entity.Name)
	}
	return names
}
