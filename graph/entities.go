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


package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/refdata"
	"github.com/helvetic-systems/laborsense/store"
)

// EntityType classifies extracted entities.
type EntityType string

const (
	EntityIndustry     EntityType = "industry"
	EntityJobRole      EntityType = "job_role"
	EntitySkill        EntityType = "skill"
	EntityLocation     EntityType = "location"
	EntityAITechnology EntityType = "ai_technology"
)

// Entity is one standardized entity accumulated across documents.
type Entity struct {
	ID             string
	Type           EntityType
	Name           string
	NormalizedName string
	Aliases        []string

	Sources      []string
	MentionCount int
	FirstSeen    time.Time
	LastUpdated  time.Time
}

// Extraction groups the entities found in one document by type.
type Extraction struct {
	Industries     []*Entity
	Locations      []*Entity
	AITechnologies []*Entity
	JobRoles       []*Entity
	Skills         []*Entity
}

var nonNameChars = regexp.MustCompile(`[^a-z0-9äöüàéèêç\s-]`)
var whitespace = regexp.MustCompile(`\s+`)

// NormalizeName canonicalizes an entity name for deduplication: lowercase,
// stripped of punctuation, spaces collapsed to underscores.
func NormalizeName(name string) string {
	low := strings.TrimSpace(strings.ToLower(name))
	low = nonNameChars.ReplaceAllString(low, "")
	return whitespace.ReplaceAllString(low, "_")
}

// EntityID builds the deterministic document ID for an entity.
func EntityID(entityType EntityType, normalizedName string) string {
	return fmt.Sprintf("entity:%s:%s", entityType, normalizedName)
}

// Extractor accumulates entities across documents. Entities with the same
// normalized name merge: their sources union and mention counts add up.
type Extractor struct {
	mu       sync.Mutex
	entities map[string]*Entity

	patterns *patternSet
}

// NewExtractor creates an empty extractor with patterns compiled from the
// reference tables.
func NewExtractor() *Extractor {
	return &Extractor{
		entities: make(map[string]*Entity),
		patterns: compilePatterns(),
	}
}

// patternSet holds the compiled word-boundary matchers per table entry.
type patternSet struct {
	industries   []namedPattern // name + aliases per industry
	jobRoles     []namedPattern
	skills       []namedPattern
	technologies []namedPattern
	cantonCodes  map[string]*regexp.Regexp // case-sensitive code match
	cantonNames  map[string]*regexp.Regexp
}

type namedPattern struct {
	name     string
	patterns []aliasPattern
}

type aliasPattern struct {
	alias string
	re    *regexp.Regexp
}

func compilePatterns() *patternSet {
	ps := &patternSet{
		cantonCodes: make(map[string]*regexp.Regexp),
		cantonNames: make(map[string]*regexp.Regexp),
	}

	for _, industry := range refdata.Industries() {
		ps.industries = append(ps.industries, compileNamed(industry.Name, industry.Aliases))
	}
	for _, role := range refdata.JobRoles() {
		ps.jobRoles = append(ps.jobRoles, compileNamed(role.Name, role.Aliases))
	}
	for _, skill := range refdata.Skills() {
		ps.skills = append(ps.skills, compileNamed(skill.Name, nil))
	}
	for _, tech := range refdata.AITechnologies() {
		ps.technologies = append(ps.technologies, compileNamed(tech.Name, nil))
	}
	for code, name := range refdata.Cantons() {
		ps.cantonCodes[code] = regexp.MustCompile(`\b` + regexp.QuoteMeta(code) + `\b`)
		ps.cantonNames[name] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	}
	return ps
}

func compileNamed(name string, aliases []string) namedPattern {
	np := namedPattern{name: name}
	for _, alias := range append([]string{name}, aliases...) {
		np.patterns = append(np.patterns, aliasPattern{
			alias: alias,
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`),
		})
	}
	return np
}

// Extract finds all entity mentions in a document. The document metadata
// contributes directly: an explicit industry or canton field counts as a
// mention without needing a content match.
func (x *Extractor) Extract(content string, meta core.Metadata, source string) Extraction {
	x.mu.Lock()
	defer x.mu.Unlock()

	var out Extraction

	// Industries: metadata field first, then content patterns.
	if meta.Industry != "" {
		out.Industries = append(out.Industries,
			x.findOrCreateLocked(EntityIndustry, refdata.StandardizeIndustry(meta.Industry), source))
	}
	for _, industry := range x.patterns.industries {
		for _, p := range industry.patterns {
			if p.re.MatchString(content) {
				out.Industries = append(out.Industries,
					x.findOrCreateLocked(EntityIndustry, industry.name, source))
				break
			}
		}
	}

	// Locations: canton metadata, canton codes and names in content, and
	// Switzerland itself as the ambient location of every document.
	if meta.Canton != "" {
		name := meta.Canton
		if full, ok := refdata.CantonName(meta.Canton); ok {
			name = full
		}
		out.Locations = append(out.Locations, x.findOrCreateLocked(EntityLocation, name, source))
	}
	for code, codeRe := range x.patterns.cantonCodes {
		name, _ := refdata.CantonName(code)
		if codeRe.MatchString(content) || x.patterns.cantonNames[name].MatchString(content) {
			out.Locations = append(out.Locations, x.findOrCreateLocked(EntityLocation, name, source))
		}
	}
	out.Locations = append(out.Locations, x.findOrCreateLocked(EntityLocation, "Schweiz", source))

	for _, tech := range x.patterns.technologies {
		if tech.patterns[0].re.MatchString(content) {
			out.AITechnologies = append(out.AITechnologies,
				x.findOrCreateLocked(EntityAITechnology, tech.name, source))
		}
	}

	for _, role := range x.patterns.jobRoles {
		for _, p := range role.patterns {
			if p.re.MatchString(content) {
				entity := x.findOrCreateLocked(EntityJobRole, role.name, source)
				if !strings.EqualFold(p.alias, role.name) && !contains(entity.Aliases, p.alias) {
					entity.Aliases = append(entity.Aliases, p.alias)
				}
				out.JobRoles = append(out.JobRoles, entity)
				break
			}
		}
	}

	for _, skill := range x.patterns.skills {
		if skill.patterns[0].re.MatchString(content) {
			out.Skills = append(out.Skills, x.findOrCreateLocked(EntitySkill, skill.name, source))
		}
	}

	return out
}

func (x *Extractor) findOrCreateLocked(entityType EntityType, name, source string) *Entity {
	normalized := NormalizeName(name)
	id := EntityID(entityType, normalized)

	if entity, ok := x.entities[id]; ok {
		if !contains(entity.Sources, source) {
			entity.Sources = append(entity.Sources, source)
		}
		entity.MentionCount++
		entity.LastUpdated = time.Now().UTC()
		return entity
	}

	now := time.Now().UTC()
	entity := &Entity{
		ID:             id,
		Type:           entityType,
		Name:           name,
		NormalizedName: normalized,
		Sources:        []string{source},
		MentionCount:   1,
		FirstSeen:      now,
		LastUpdated:    now,
	}
	x.entities[id] = entity
	return entity
}

// All returns every accumulated entity, sorted by ID for determinism.
func (x *Extractor) All() []*Entity {
	x.mu.Lock()
	defer x.mu.Unlock()

	out := make([]*Entity, 0, len(x.entities))
	for _, entity := range x.entities {
		out = append(out, entity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByType returns the accumulated entities of one type, sorted by ID.
func (x *Extractor) ByType(entityType EntityType) []*Entity {
	var out []*Entity
	for _, entity := range x.All() {
		if entity.Type == entityType {
			out = append(out, entity)
		}
	}
	return out
}

// Reset drops all accumulated entities.
func (x *Extractor) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entities = make(map[string]*Entity)
}

// SaveToStore writes every accumulated entity into the store as a document,
// one per entity, with a batch flush at the end.
func (x *Extractor) SaveToStore(st *store.Store) int {
	entities := x.All()

	docs := make([]*core.Document, 0, len(entities))
	for _, entity := range entities {
		docs = append(docs, &core.Document{
			ID:      entity.ID,
			Content: fmt.Sprintf("%s: %s", entity.Type, entity.Name),
			Metadata: core.Metadata{
				Source: "entity_extraction",
				Title:  entity.Name,
				Tags:   []string{string(entity.Type), "entity"},
				Extra: map[string]any{
					"entityType":     string(entity.Type),
					"name":           entity.Name,
					"normalizedName": entity.NormalizedName,
					"aliases":        strings.Join(entity.Aliases, ", "),
					"mentionCount":   entity.MentionCount,
					"sources":        strings.Join(entity.Sources, ", "),
				},
			},
		})
	}
	st.InsertBatch(docs)
	return len(docs)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
