package graph

import (
	"fmt"
	"strings"

	"github.com/helvetic-systems/laborsense/refdata"
	"github.com/helvetic-systems/laborsense/store"
)

// RelatedEntity is one entity connected to an assessment target.
type RelatedEntity struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Relationship string  `json:"relationship"`
	ImpactScore  float64 `json:"impactScore,omitempty"`
}

// Assessment is the answer to "how exposed is this industry or job role to
// AI" for a named target.
type Assessment struct {
	Target          string          `json:"target"`
	TargetType      EntityType      `json:"targetType"`
	Found           bool            `json:"found"`
	Score           float64         `json:"score,omitempty"`
	Confidence      float64         `json:"confidence,omitempty"`
	Reasoning       string          `json:"reasoning"`
	Factors         *ImpactFactors  `json:"factors,omitempty"`
	RelatedEntities []RelatedEntity `json:"relatedEntities"`
	Recommendations []string        `json:"recommendations"`
	Sources         []string        `json:"sources"`
}

// Assess answers an impact query for an industry or job role. The target is
// normalized against the reference tables; mention counts come from any
// previously built graph in the store. Unknown targets get a generic answer
// with Found set to false, never an error.
func Assess(st *store.Store, target string, targetType EntityType) Assessment {
	name, ok := resolveTarget(target, targetType)
	if !ok {
		return Assessment{
			Target:     target,
			TargetType: targetType,
			Found:      false,
			Reasoning: fmt.Sprintf("Keine spezifischen Daten für %q gefunden. "+
				"Allgemeine Einschätzung: Die meisten Bereiche in der Schweiz sind von "+
				"AI-Entwicklungen betroffen, der genaue Impact hängt von spezifischen "+
				"Tätigkeiten und Automatisierungspotenzial ab.", target),
			RelatedEntities: []RelatedEntity{},
			Recommendations: []string{
				"Allgemeine AI-Literacy entwickeln",
				"Spezifische Branchenanalyse empfohlen",
				"Kontaktieren Sie Branchenverbände für detailliertere Informationen",
			},
			Sources: []string{},
		}
	}

	entity := entityFromStore(st, targetType, name)
	scorer := NewScorer(NewExtractor())
	impact := scorer.Score(entity)

	return Assessment{
		Target:          name,
		TargetType:      targetType,
		Found:           true,
		Score:           impact.Score,
		Confidence:      impact.Confidence,
		Reasoning:       impact.Reasoning,
		Factors:         &impact.Factors,
		RelatedEntities: relatedEntities(targetType, name, scorer),
		Recommendations: recommendations(impact.Score, targetType, name),
		Sources: []string{
			"BFS Beschäftigungsstatistik",
			"Swiss AI Labor Market Knowledge Base",
			"Branchenberichte 2024",
		},
	}
}

// resolveTarget maps free-form input to a standardized table name.
func resolveTarget(target string, targetType EntityType) (string, bool) {
	low := strings.ToLower(strings.TrimSpace(target))
	if low == "" {
		return "", false
	}

	if targetType == EntityIndustry {
		standardized := refdata.StandardizeIndustry(target)
		if _, ok := refdata.IndustryByName(standardized); ok {
			return standardized, true
		}
		for _, industry := range refdata.Industries() {
			if strings.Contains(strings.ToLower(industry.Name), low) {
				return industry.Name, true
			}
		}
		return "", false
	}

	for _, role := range refdata.JobRoles() {
		if strings.Contains(strings.ToLower(role.Name), low) ||
			strings.Contains(low, strings.ToLower(role.Name)) {
			return role.Name, true
		}
		for _, alias := range role.Aliases {
			if strings.EqualFold(alias, strings.TrimSpace(target)) {
				return role.Name, true
			}
		}
	}
	return "", false
}

// entityFromStore rebuilds an Entity for scoring, pulling mention counts and
// sources from a previously saved entity document when one exists.
func entityFromStore(st *store.Store, entityType EntityType, name string) *Entity {
	entity := &Entity{
		ID:             EntityID(entityType, NormalizeName(name)),
		Type:           entityType,
		Name:           name,
		NormalizedName: NormalizeName(name),
		MentionCount:   1,
		Sources:        []string{"refdata"},
	}

	if doc, ok := st.Get(entity.ID); ok && doc.Metadata.Extra != nil {
		if count, ok := doc.Metadata.Extra["mentionCount"].(float64); ok {
			entity.MentionCount = int(count)
		}
		if sources, ok := doc.Metadata.Extra["sources"].(string); ok && sources != "" {
			entity.Sources = strings.Split(sources, ", ")
		}
	}
	return entity
}

func relatedEntities(targetType EntityType, name string, scorer *Scorer) []RelatedEntity {
	related := []RelatedEntity{}

	if targetType == EntityIndustry {
		industry, _ := refdata.IndustryByName(name)
		for i, roleName := range industry.Employs {
			if i == 4 {
				break
			}
			role := &Entity{
				ID: EntityID(EntityJobRole, NormalizeName(roleName)), Type: EntityJobRole,
				Name: roleName, MentionCount: 1, Sources: []string{"refdata"},
			}
			related = append(related, RelatedEntity{
				Name:         roleName,
				Type:         string(EntityJobRole),
				Relationship: "Betroffene Rolle",
				ImpactScore:  scorer.Score(role).Score,
			})
		}
		return related
	}

	// Industries employing this role, then the skills it requires.
	count := 0
	for _, industry := range refdata.Industries() {
		if count == 3 {
			break
		}
		for _, roleName := range industry.Employs {
			if roleName != name {
				continue
			}
			entity := &Entity{
				ID: EntityID(EntityIndustry, NormalizeName(industry.Name)), Type: EntityIndustry,
				Name: industry.Name, MentionCount: 1, Sources: []string{"refdata"},
			}
			related = append(related, RelatedEntity{
				Name:         industry.Name,
				Type:         string(EntityIndustry),
				Relationship: "Relevante Branche",
				ImpactScore:  scorer.Score(entity).Score,
			})
			count++
			break
		}
	}

	skillCount := 0
	for _, skill := range refdata.Skills() {
		if skillCount == 3 {
			break
		}
		for _, roleName := range skill.Roles {
			if roleName == name {
				related = append(related, RelatedEntity{
					Name:         skill.Name,
					Type:         string(EntitySkill),
					Relationship: "Benötigte Kompetenz",
				})
				skillCount++
				break
			}
		}
	}
	return related
}

func recommendations(score float64, targetType EntityType, name string) []string {
	var out []string

	switch {
	case score >= 7:
		out = append(out,
			"Hohe Priorität für Weiterbildung in AI-Tools und digitale Kompetenzen",
			"Fokus auf Tätigkeiten, die menschliche Stärken erfordern: Kreativität, Empathie, komplexe Entscheidungen")
		if targetType == EntityIndustry {
			out = append(out, "Strategische AI-Investitionen zur Wettbewerbsfähigkeit")
		} else {
			out = append(out, "Umschulung oder Spezialisierung auf AI-gestützte Workflows empfohlen")
		}
	case score >= 5:
		out = append(out,
			"Kontinuierliche Weiterbildung in AI-Tools empfohlen",
			"Hybride Arbeitsweisen zwischen Mensch und AI entwickeln",
			"Monitoring der AI-Entwicklungen in diesem Bereich")
	default:
		out = append(out,
			"Grundlegende AI-Literacy entwickeln",
			"AI als Produktivitäts-Tool nutzen",
			"Fokus auf Kernkompetenzen beibehalten")
	}

	if skills := requiredSkills(targetType, name); len(skills) > 0 {
		if len(skills) > 3 {
			skills = skills[:3]
		}
		out = append(out, "Wichtige Skills: "+strings.Join(skills, ", "))
	}
	return out
}

func requiredSkills(targetType EntityType, name string) []string {
	var roleNames []string
	if targetType == EntityJobRole {
		roleNames = []string{name}
	} else if industry, ok := refdata.IndustryByName(name); ok {
		roleNames = industry.Employs
	}

	seen := make(map[string]bool)
	var out []string
	for _, skill := range refdata.Skills() {
		for _, skillRole := range skill.Roles {
			for _, roleName := range roleNames {
				if skillRole == roleName && !seen[skill.Name] {
					seen[skill.Name] = true
					out = append(out, skill.Name)
				}
			}
		}
	}
	return out
}
