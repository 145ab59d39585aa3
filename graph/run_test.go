package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/store"
)

func TestBuild_FullPipeline(t *testing.T) {
	st := store.New(t.TempDir())
	defer st.Close()

	st.InsertBatch([]*core.Document{
		{ID: "doc-1", Content: "Die Bank in Zürich automatisiert mit Machine Learning."},
		{ID: "doc-2", Content: "Der Accountant nutzt Excel.", Metadata: core.Metadata{Industry: "banking"}},
	})

	result := Build(st, nil)

	assert.Equal(t, 2, result.DocumentsProcessed)
	assert.Greater(t, result.EntitiesExtracted, 0)
	assert.Greater(t, result.ScoresComputed, 0)
	assert.Greater(t, result.RelationsCreated, 0)
	assert.NotEmpty(t, result.TopImpacted)
	assert.Contains(t, result.Summary, EntityIndustry)

	entityID := EntityID(EntityIndustry, "finanzdienstleistungen")
	_, ok := st.Get(entityID)
	require.True(t, ok, "entities land in the store")
	_, ok = st.Get("impact:" + entityID)
	require.True(t, ok, "impact scores land in the store")
}

func TestBuild_SkipsGraphDocumentsOnRebuild(t *testing.T) {
	st := store.New(t.TempDir())
	defer st.Close()

	st.Insert(&core.Document{ID: "doc-1", Content: "Die Bank wächst."})

	first := Build(st, nil)
	second := Build(st, nil)

	assert.Equal(t, first.DocumentsProcessed, second.DocumentsProcessed,
		"entity and impact documents are not re-extracted")
}
