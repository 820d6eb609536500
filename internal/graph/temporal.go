package graph

import (
	"sort"
	"time"

	"github.com/graphmem/graphmem/internal/models"
)

// Temporal event action types.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// TemporalEvent is an entity or relation whose creation or update falls
// inside a queried time window. Exactly one of Entity and Relation is set.
type TemporalEvent struct {
	Kind       string           `json:"kind"` // "entity" or "relation"
	ActionType string           `json:"action_type"`
	Timestamp  time.Time        `json:"timestamp"`
	Entity     *models.Entity   `json:"entity,omitempty"`
	Relation   *models.Relation `json:"relation,omitempty"`
}

// TemporalFilter narrows temporal queries. Zero values are wildcards.
type TemporalFilter struct {
	EntityName   string // substring on entity name, or relation from/to
	RelationType string // substring; restricts results to relations
	UserID       string // exact match on CreatedBy
}

// TemporalEvents returns every entity and relation whose CreatedAt or
// UpdatedAt falls within [start, end] inclusive, classified as "updated"
// when the record has been modified since creation and the in-range stamp
// is the update, otherwise "created". A zero start means the Unix epoch; a
// zero end means now. Events are ordered by timestamp.
func TemporalEvents(doc *models.GraphDocument, start, end time.Time, filter TemporalFilter, now time.Time) []TemporalEvent {
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	if end.IsZero() {
		end = now
	}

	var events []TemporalEvent
	if filter.RelationType == "" {
		for i := range doc.Entities {
			e := &doc.Entities[i]
			if filter.EntityName != "" && !containsFold(e.Name, filter.EntityName) {
				continue
			}
			if filter.UserID != "" && e.CreatedBy != filter.UserID {
				continue
			}
			if action, ts, ok := classify(e.CreatedAt, e.UpdatedAt, start, end); ok {
				events = append(events, TemporalEvent{Kind: "entity", ActionType: action, Timestamp: ts, Entity: e})
			}
		}
	}
	for i := range doc.Relations {
		r := &doc.Relations[i]
		if filter.EntityName != "" && !containsFold(r.From, filter.EntityName) && !containsFold(r.To, filter.EntityName) {
			continue
		}
		if filter.RelationType != "" && !containsFold(r.RelationType, filter.RelationType) {
			continue
		}
		if filter.UserID != "" && r.CreatedBy != filter.UserID {
			continue
		}
		if action, ts, ok := classify(r.CreatedAt, r.UpdatedAt, start, end); ok {
			events = append(events, TemporalEvent{Kind: "relation", ActionType: action, Timestamp: ts, Relation: r})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}

// classify picks the event action for a record given its timestamps and the
// window. An in-range update on a modified record wins over its creation;
// otherwise an in-range creation reports "created".
func classify(createdAt, updatedAt, start, end time.Time) (string, time.Time, bool) {
	if !updatedAt.Equal(createdAt) && inRange(updatedAt, start, end) {
		return ActionUpdated, updatedAt, true
	}
	if inRange(createdAt, start, end) {
		return ActionCreated, createdAt, true
	}
	return "", time.Time{}, false
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
