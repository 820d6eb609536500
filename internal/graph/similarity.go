package graph

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/graphmem/graphmem/internal/models"
)

// Similarity term weights. Name closeness dominates slightly; type equality
// and observation overlap split the remainder.
const (
	nameWeight        = 0.4
	typeWeight        = 0.3
	observationWeight = 0.3
)

// DefaultDuplicateThreshold is the duplicate-detection cutoff used when the
// caller does not supply one.
const DefaultDuplicateThreshold = 0.8

// Similarity scores how alike two entities are, in [0,1]. It is a weighted
// sum of normalized Levenshtein name distance (case-insensitive), exact
// entity type equality, and Jaccard overlap of lowercased observation sets.
func Similarity(e1, e2 models.Entity) float64 {
	score := nameWeight * nameSimilarity(e1.Name, e2.Name)
	if e1.EntityType == e2.EntityType {
		score += typeWeight
	}
	score += observationWeight * observationJaccard(e1.Observations, e2.Observations)
	return score
}

func nameSimilarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// observationJaccard is |intersection| / |union| over lowercased observation
// sets, defined as 0 when both sets are empty.
func observationJaccard(obs1, obs2 []string) float64 {
	set1 := lowerSet(obs1)
	set2 := lowerSet(obs2)
	if len(set1) == 0 && len(set2) == 0 {
		return 0
	}
	intersection := 0
	for obs := range set1 {
		if _, ok := set2[obs]; ok {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	return float64(intersection) / float64(union)
}

func lowerSet(obs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(obs))
	for _, o := range obs {
		set[strings.ToLower(o)] = struct{}{}
	}
	return set
}

// DuplicateGroup is a transitively-closed set of entities that score at or
// above the detection threshold against at least one other member.
type DuplicateGroup struct {
	EntityType           string   `json:"entity_type"`
	Names                []string `json:"names"`
	MaxScore             float64  `json:"max_score"`
	SuggestedMergeTarget string   `json:"suggested_merge_target"`
}

// DetectDuplicates scans the graph for likely duplicate entities. Entities
// are partitioned by type (cross-type pairs are never compared) and every
// unordered pair within a partition is scored; pairs at or above the
// threshold are merged into groups via transitive closure. The suggested
// merge target of a group is its member with the earliest CreatedAt, ties
// broken by original graph order.
//
// This is an O(n²) per-type scan intended for offline, caller-triggered
// use, not a hot path.
func DetectDuplicates(doc *models.GraphDocument, threshold float64) ([]DuplicateGroup, error) {
	if threshold < 0 || threshold > 1 {
		return nil, NewValidationError("threshold %v outside [0,1]", threshold)
	}

	byType := make(map[string][]models.Entity)
	var typeOrder []string
	for _, e := range doc.Entities {
		if _, ok := byType[e.EntityType]; !ok {
			typeOrder = append(typeOrder, e.EntityType)
		}
		byType[e.EntityType] = append(byType[e.EntityType], e)
	}

	var groups []DuplicateGroup
	for _, entityType := range typeOrder {
		groups = append(groups, detectInPartition(entityType, byType[entityType], threshold)...)
	}
	return groups, nil
}

func detectInPartition(entityType string, entities []models.Entity, threshold float64) []DuplicateGroup {
	// memberships[i] is the group index of entities[i], or -1.
	memberships := make([]int, len(entities))
	for i := range memberships {
		memberships[i] = -1
	}

	type group struct {
		members  []int
		maxScore float64
	}
	var groups []*group

	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			score := Similarity(entities[i], entities[j])
			if score < threshold {
				continue
			}
			gi, gj := memberships[i], memberships[j]
			switch {
			case gi == -1 && gj == -1:
				groups = append(groups, &group{members: []int{i, j}, maxScore: score})
				memberships[i] = len(groups) - 1
				memberships[j] = len(groups) - 1
			case gi != -1 && gj == -1:
				groups[gi].members = append(groups[gi].members, j)
				if score > groups[gi].maxScore {
					groups[gi].maxScore = score
				}
				memberships[j] = gi
			case gi == -1 && gj != -1:
				groups[gj].members = append(groups[gj].members, i)
				if score > groups[gj].maxScore {
					groups[gj].maxScore = score
				}
				memberships[i] = gj
			case gi != gj:
				// Transitive closure: fold group j into group i.
				for _, m := range groups[gj].members {
					memberships[m] = gi
				}
				groups[gi].members = append(groups[gi].members, groups[gj].members...)
				if groups[gj].maxScore > groups[gi].maxScore {
					groups[gi].maxScore = groups[gj].maxScore
				}
				if score > groups[gi].maxScore {
					groups[gi].maxScore = score
				}
				groups[gj].members = nil
			default:
				if score > groups[gi].maxScore {
					groups[gi].maxScore = score
				}
			}
		}
	}

	var result []DuplicateGroup
	for _, g := range groups {
		if g.members == nil {
			continue // folded into another group
		}
		// Restore original graph order within the group.
		ordered := make([]int, 0, len(g.members))
		for i := range entities {
			if memberships[i] >= 0 && groups[memberships[i]] == g {
				ordered = append(ordered, i)
			}
		}
		names := make([]string, len(ordered))
		target := ordered[0]
		for i, idx := range ordered {
			names[i] = entities[idx].Name
			if entities[idx].CreatedAt.Before(entities[target].CreatedAt) {
				target = idx
			}
		}
		result = append(result, DuplicateGroup{
			EntityType:           entityType,
			Names:                names,
			MaxScore:             g.maxScore,
			SuggestedMergeTarget: entities[target].Name,
		})
	}
	return result
}
