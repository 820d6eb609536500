package graph

import (
	"time"

	"github.com/graphmem/graphmem/internal/models"
)

// RelationInput is the caller-supplied shape for relation creation.
// Strength is optional; nil means the default of 0.8.
type RelationInput struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	RelationType string   `json:"relation_type"`
	Strength     *float64 `json:"strength,omitempty"`
}

// RelationKey identifies a relation by its (from, to, relation_type) triple.
type RelationKey struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relation_type"`
}

// CreateRelations creates the given relations, silently dropping any input
// whose triple already exists (the stored relation is left untouched).
// Strength defaults to 0.8 and is clamped to [0,1] when set. Only newly
// created relations are returned, in input order.
//
// Referential integrity is deliberately not enforced: a relation may name
// entities that do not exist yet.
func CreateRelations(doc *models.GraphDocument, inputs []RelationInput, userID string, now time.Time) (*models.GraphDocument, []models.Relation, error) {
	for _, in := range inputs {
		if in.From == "" || in.To == "" || in.RelationType == "" {
			return nil, nil, NewValidationError("relation input requires from, to, and relation_type")
		}
	}

	out := doc.Clone()
	var created []models.Relation
	for _, in := range inputs {
		if out.Relation(in.From, in.To, in.RelationType) != nil {
			continue
		}
		strength := models.DefaultStrength
		if in.Strength != nil {
			strength = models.ClampStrength(*in.Strength)
		}
		r := models.Relation{
			From:         in.From,
			To:           in.To,
			RelationType: in.RelationType,
			Strength:     strength,
			CreatedAt:    now,
			UpdatedAt:    now,
			CreatedBy:    userID,
		}
		out.Relations = append(out.Relations, r)
		created = append(created, r)
	}
	return out, created, nil
}

// RelationQuery narrows a relation search. Empty fields are wildcards.
type RelationQuery struct {
	From         string
	To           string
	RelationType string
}

// SearchRelations returns relations matching the query by case-insensitive
// substring on each provided field.
func SearchRelations(doc *models.GraphDocument, q RelationQuery) []models.Relation {
	var matched []models.Relation
	for _, r := range doc.Relations {
		if q.From != "" && !containsFold(r.From, q.From) {
			continue
		}
		if q.To != "" && !containsFold(r.To, q.To) {
			continue
		}
		if q.RelationType != "" && !containsFold(r.RelationType, q.RelationType) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

// SearchRelationsByUser returns relations whose CreatedBy contains userID,
// optionally narrowed by a relation type substring.
func SearchRelationsByUser(doc *models.GraphDocument, userID, relationType string) []models.Relation {
	var matched []models.Relation
	for _, r := range doc.Relations {
		if !containsFold(r.CreatedBy, userID) {
			continue
		}
		if relationType != "" && !containsFold(r.RelationType, relationType) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

// UpdateRelationStrength sets the strength of an existing relation, clamped
// to [0,1], and refreshes its UpdatedAt.
func UpdateRelationStrength(doc *models.GraphDocument, from, to, relationType string, strength float64, now time.Time) (*models.GraphDocument, models.Relation, error) {
	out := doc.Clone()
	r := out.Relation(from, to, relationType)
	if r == nil {
		return nil, models.Relation{}, NewRelationNotFound(from, to, relationType)
	}
	r.Strength = models.ClampStrength(strength)
	r.UpdatedAt = now
	return out, *r, nil
}

// DeleteRelations removes every relation exactly matching one of the given
// triples. Absent triples are ignored; the count of removed relations is
// returned.
func DeleteRelations(doc *models.GraphDocument, keys []RelationKey) (*models.GraphDocument, int) {
	doomed := make(map[RelationKey]struct{}, len(keys))
	for _, k := range keys {
		doomed[k] = struct{}{}
	}

	out := doc.Clone()
	kept := out.Relations[:0]
	removed := 0
	for _, r := range out.Relations {
		key := RelationKey{From: r.From, To: r.To, RelationType: r.RelationType}
		if _, ok := doomed[key]; ok {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	out.Relations = kept
	return out, removed
}
