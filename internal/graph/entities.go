// Package graph implements the knowledge graph domain engine: entity and
// relation stores, fuzzy duplicate detection, entity merging, batched
// mutation, and temporal event extraction.
//
// Every operation is a pure function of a GraphDocument plus arguments: the
// input document is cloned, the clone is mutated and returned, and the
// caller decides whether to persist it. The current time is passed in
// explicitly so timestamp behavior is deterministic under test.
package graph

import (
	"strings"
	"time"

	"github.com/graphmem/graphmem/internal/models"
)

// EntityInput is the caller-supplied shape for entity creation.
type EntityInput struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entity_type"`
	Observations []string `json:"observations"`
}

// CreateEntities creates the given entities, merging into any entity that
// already exists under the same name: observations are unioned (first-seen
// order preserved) and UpdatedAt is refreshed. New entities are stamped
// CreatedAt = UpdatedAt = now with CreatedBy = userID. The returned slice
// holds every touched entity in input order.
func CreateEntities(doc *models.GraphDocument, inputs []EntityInput, userID string, now time.Time) (*models.GraphDocument, []models.Entity, error) {
	for _, in := range inputs {
		if in.Name == "" {
			return nil, nil, NewValidationError("entity input missing name")
		}
		if in.EntityType == "" {
			return nil, nil, NewValidationError("entity %q missing entity_type", in.Name)
		}
		if in.Observations == nil {
			return nil, nil, NewValidationError("entity %q missing observations array", in.Name)
		}
	}

	out := doc.Clone()
	touched := make([]models.Entity, 0, len(inputs))
	for _, in := range inputs {
		if existing := out.Entity(in.Name); existing != nil {
			existing.Observations = unionObservations(existing.Observations, in.Observations)
			existing.UpdatedAt = now
			touched = append(touched, *existing)
			continue
		}
		e := models.Entity{
			Name:         in.Name,
			EntityType:   in.EntityType,
			Observations: unionObservations(nil, in.Observations),
			CreatedAt:    now,
			UpdatedAt:    now,
			CreatedBy:    userID,
		}
		out.Entities = append(out.Entities, e)
		touched = append(touched, e)
	}
	return out, touched, nil
}

// EntityQuery narrows a structured entity search. Empty fields are wildcards.
type EntityQuery struct {
	Name       string
	EntityType string
}

// SearchEntities returns entities matching the query by case-insensitive
// substring on each provided field. An empty query matches everything.
func SearchEntities(doc *models.GraphDocument, q EntityQuery) []models.Entity {
	var matched []models.Entity
	for _, e := range doc.Entities {
		if q.Name != "" && !containsFold(e.Name, q.Name) {
			continue
		}
		if q.EntityType != "" && !containsFold(e.EntityType, q.EntityType) {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

// SearchEntitiesText matches a single free-text query against entity name,
// entity type, and every observation (logical OR, case-insensitive substring).
func SearchEntitiesText(doc *models.GraphDocument, query string) []models.Entity {
	var matched []models.Entity
	for _, e := range doc.Entities {
		if entityMatchesText(e, query) {
			matched = append(matched, e)
		}
	}
	return matched
}

func entityMatchesText(e models.Entity, query string) bool {
	if containsFold(e.Name, query) || containsFold(e.EntityType, query) {
		return true
	}
	for _, obs := range e.Observations {
		if containsFold(obs, query) {
			return true
		}
	}
	return false
}

// AddObservation appends an observation to an existing entity unless an
// identical one (case-sensitive) is already present, and refreshes
// UpdatedAt either way. The entity must exist; there is no auto-create.
func AddObservation(doc *models.GraphDocument, entityName, observation, userID string, now time.Time) (*models.GraphDocument, models.Entity, error) {
	out := doc.Clone()
	e := out.Entity(entityName)
	if e == nil {
		return nil, models.Entity{}, NewEntityNotFound(entityName)
	}
	e.Observations = unionObservations(e.Observations, []string{observation})
	e.UpdatedAt = now
	return out, *e, nil
}

// UpdateEntity unions new observations into an existing entity,
// shallow-merges metadata (new keys overwrite existing ones), refreshes
// UpdatedAt, and back-fills CreatedBy only when it was previously unset.
func UpdateEntity(doc *models.GraphDocument, entityName string, newObservations []string, metadata map[string]string, userID string, now time.Time) (*models.GraphDocument, models.Entity, error) {
	out := doc.Clone()
	e := out.Entity(entityName)
	if e == nil {
		return nil, models.Entity{}, NewEntityNotFound(entityName)
	}
	e.Observations = unionObservations(e.Observations, newObservations)
	if len(metadata) > 0 {
		if e.Metadata == nil {
			e.Metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	}
	if e.CreatedBy == "" {
		e.CreatedBy = userID
	}
	e.UpdatedAt = now
	return out, *e, nil
}

// DeleteEntity removes the named entity and, atomically with it, every
// relation whose From or To equals the deleted name.
func DeleteEntity(doc *models.GraphDocument, entityName string) (*models.GraphDocument, error) {
	if doc.Entity(entityName) == nil {
		return nil, NewEntityNotFound(entityName)
	}
	out := doc.Clone()
	entities := out.Entities[:0]
	for _, e := range out.Entities {
		if e.Name != entityName {
			entities = append(entities, e)
		}
	}
	out.Entities = entities

	relations := out.Relations[:0]
	for _, r := range out.Relations {
		if r.From != entityName && r.To != entityName {
			relations = append(relations, r)
		}
	}
	out.Relations = relations
	return out, nil
}

// unionObservations appends the additions that are not already present,
// preserving first-seen order. Comparison is case-sensitive and exact.
func unionObservations(existing, additions []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(additions))
	merged := make([]string, 0, len(existing)+len(additions))
	for _, obs := range existing {
		if _, ok := seen[obs]; ok {
			continue
		}
		seen[obs] = struct{}{}
		merged = append(merged, obs)
	}
	for _, obs := range additions {
		if _, ok := seen[obs]; ok {
			continue
		}
		seen[obs] = struct{}{}
		merged = append(merged, obs)
	}
	return merged
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
