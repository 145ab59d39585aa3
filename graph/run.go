package graph

import (
	"log/slog"
	"strings"

	"github.com/helvetic-systems/laborsense/store"
)

// BuildResult summarizes one knowledge graph build.
type BuildResult struct {
	DocumentsProcessed int                        `json:"documentsProcessed"`
	EntitiesExtracted  int                        `json:"entitiesExtracted"`
	ScoresComputed     int                        `json:"scoresComputed"`
	RelationsCreated   int                        `json:"relationsCreated"`
	Summary            map[EntityType]TypeSummary `json:"summary"`
	TopImpacted        []*ImpactScore             `json:"topImpacted"`
}

// Build runs the full entity and impact pipeline over every regular document
// in the store: extract entities, save them as documents, compute impact
// scores, save those, and link the graph. Entity and impact documents from
// earlier builds are skipped as input and overwritten as output.
func Build(st *store.Store, logger *slog.Logger) BuildResult {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "graph")

	extractor := NewExtractor()

	processed := 0
	for _, doc := range st.Documents(nil) {
		if strings.HasPrefix(doc.ID, "entity:") || strings.HasPrefix(doc.ID, "impact:") {
			continue
		}
		extractor.Extract(doc.Content, doc.Metadata, doc.ID)
		processed++
	}
	logger.Info("entity extraction complete",
		"documents", processed, "entities", len(extractor.All()))

	entities := extractor.SaveToStore(st)

	scorer := NewScorer(extractor)
	scorer.ScoreAll()
	scores := scorer.SaveToStore(st)
	relations := scorer.LinkEntities(st)
	st.Flush()

	logger.Info("impact scoring complete", "scores", scores, "relations", relations)

	return BuildResult{
		DocumentsProcessed: processed,
		EntitiesExtracted:  entities,
		ScoresComputed:     scores,
		RelationsCreated:   relations,
		Summary:            scorer.Summary(),
		TopImpacted:        scorer.TopImpacted(5, ""),
	}
}
