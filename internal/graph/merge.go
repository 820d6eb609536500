package graph

import (
	"time"

	"github.com/graphmem/graphmem/internal/models"
)

// Merge strategies.
const (
	StrategyCombine = "combine"
	StrategyReplace = "replace"
)

// MergeEntities consolidates the source entities into the target.
//
// Under "combine" the target unions the sources' observations and
// shallow-merges metadata across target then sources in order, so later
// sources overwrite earlier keys and the target's own. Under "replace" the
// target keeps its own observations and metadata untouched; sources
// contribute nothing but are still absorbed.
//
// Every relation endpoint naming a source is rewritten to the target, and
// relations that become self-loops through the rewrite are dropped. The
// sources are removed and the target's UpdatedAt refreshed. Target and all
// sources must exist; otherwise the whole merge fails with no partial
// effect.
func MergeEntities(doc *models.GraphDocument, target string, sources []string, strategy string, now time.Time) (*models.GraphDocument, models.Entity, error) {
	if strategy != StrategyCombine && strategy != StrategyReplace {
		return nil, models.Entity{}, NewValidationError("unknown merge strategy %q", strategy)
	}
	if len(sources) == 0 {
		return nil, models.Entity{}, NewValidationError("merge requires at least one source entity")
	}
	if doc.Entity(target) == nil {
		return nil, models.Entity{}, NewEntityNotFound(target)
	}
	sourceSet := make(map[string]struct{}, len(sources))
	for _, name := range sources {
		if name == target {
			return nil, models.Entity{}, NewValidationError("entity %q cannot be merged into itself", target)
		}
		if doc.Entity(name) == nil {
			return nil, models.Entity{}, NewEntityNotFound(name)
		}
		sourceSet[name] = struct{}{}
	}

	out := doc.Clone()
	merged := out.Entity(target)

	if strategy == StrategyCombine {
		for _, name := range sources {
			src := out.Entity(name)
			merged.Observations = unionObservations(merged.Observations, src.Observations)
			if len(src.Metadata) > 0 {
				if merged.Metadata == nil {
					merged.Metadata = make(map[string]string, len(src.Metadata))
				}
				for k, v := range src.Metadata {
					merged.Metadata[k] = v
				}
			}
		}
	}

	// Rewire relation endpoints from sources to the target, dropping any
	// relation the rewrite turns into a self-loop. Self-loops that were
	// already stored stay: only a rewritten endpoint disqualifies. The
	// rewrite can also collapse distinct relations onto the same triple;
	// the earliest one wins to keep triples unique.
	seen := make(map[RelationKey]struct{}, len(out.Relations))
	relations := out.Relations[:0]
	for _, r := range out.Relations {
		origFrom, origTo := r.From, r.To
		if _, ok := sourceSet[r.From]; ok {
			r.From = target
		}
		if _, ok := sourceSet[r.To]; ok {
			r.To = target
		}
		rewired := r.From != origFrom || r.To != origTo
		if rewired && r.From == r.To {
			continue
		}
		key := RelationKey{From: r.From, To: r.To, RelationType: r.RelationType}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		relations = append(relations, r)
	}
	out.Relations = relations

	entities := out.Entities[:0]
	for _, e := range out.Entities {
		if _, ok := sourceSet[e.Name]; ok {
			continue
		}
		entities = append(entities, e)
	}
	out.Entities = entities

	merged = out.Entity(target)
	merged.UpdatedAt = now
	return out, *merged, nil
}
