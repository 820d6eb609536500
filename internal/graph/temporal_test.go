package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphmem/graphmem/internal/models"
)

func TestTemporalClassification(t *testing.T) {
	doc := &models.GraphDocument{Entities: []models.Entity{
		{Name: "Fresh", EntityType: "Thing", CreatedAt: t0, UpdatedAt: t0},
		{Name: "Touched", EntityType: "Thing", CreatedAt: t0, UpdatedAt: t1},
	}}

	// Created at t0, never updated, queried over [t0, t0]: 'created'.
	events := TemporalEvents(doc, t0, t0, TemporalFilter{EntityName: "Fresh"}, t2)
	require.Len(t, events, 1)
	assert.Equal(t, ActionCreated, events[0].ActionType)
	assert.Equal(t, t0, events[0].Timestamp)

	// Updated at t1 > t0, queried over [t1, t1]: 'updated'.
	events = TemporalEvents(doc, t1, t1, TemporalFilter{EntityName: "Touched"}, t2)
	require.Len(t, events, 1)
	assert.Equal(t, ActionUpdated, events[0].ActionType)
	assert.Equal(t, t1, events[0].Timestamp)

	// Queried over [t0, t0]: only the creation is in range, so 'created'.
	events = TemporalEvents(doc, t0, t0, TemporalFilter{EntityName: "Touched"}, t2)
	require.Len(t, events, 1)
	assert.Equal(t, ActionCreated, events[0].ActionType)
}

func TestTemporalEventsWindowAndOrder(t *testing.T) {
	doc := &models.GraphDocument{
		Entities: []models.Entity{
			{Name: "Old", EntityType: "Thing", CreatedAt: t0.Add(-time.Hour), UpdatedAt: t0.Add(-time.Hour)},
			{Name: "B", EntityType: "Thing", CreatedAt: t1, UpdatedAt: t1},
			{Name: "A", EntityType: "Thing", CreatedAt: t0, UpdatedAt: t0},
		},
		Relations: []models.Relation{
			{From: "A", To: "B", RelationType: "knows", CreatedAt: t2, UpdatedAt: t2},
		},
	}

	events := TemporalEvents(doc, t0, t2, TemporalFilter{}, t2)
	require.Len(t, events, 3, "records outside the window are excluded")
	assert.Equal(t, "A", events[0].Entity.Name)
	assert.Equal(t, "B", events[1].Entity.Name)
	assert.Equal(t, "relation", events[2].Kind)
}

func TestTemporalEventsDefaults(t *testing.T) {
	doc := &models.GraphDocument{Entities: []models.Entity{
		{Name: "A", EntityType: "Thing", CreatedAt: t0, UpdatedAt: t0},
	}}

	// Zero start means epoch, zero end means now: everything up to the
	// clock is included.
	events := TemporalEvents(doc, time.Time{}, time.Time{}, TemporalFilter{}, t1)
	assert.Len(t, events, 1)

	// A clock before the record's creation excludes it.
	events = TemporalEvents(doc, time.Time{}, time.Time{}, TemporalFilter{}, t0.Add(-time.Minute))
	assert.Empty(t, events)
}

func TestTemporalEventsFilters(t *testing.T) {
	doc := &models.GraphDocument{
		Entities: []models.Entity{
			{Name: "Alice", EntityType: "Person", CreatedBy: "u1", CreatedAt: t0, UpdatedAt: t0},
			{Name: "Bob", EntityType: "Person", CreatedBy: "u2", CreatedAt: t0, UpdatedAt: t0},
		},
		Relations: []models.Relation{
			{From: "Alice", To: "Bob", RelationType: "knows", CreatedBy: "u1", CreatedAt: t0, UpdatedAt: t0},
			{From: "Bob", To: "Carol", RelationType: "manages", CreatedBy: "u2", CreatedAt: t0, UpdatedAt: t0},
		},
	}

	// entity_name matches entity names and relation endpoints.
	events := TemporalEvents(doc, t0, t1, TemporalFilter{EntityName: "alice"}, t2)
	require.Len(t, events, 2)
	assert.Equal(t, "entity", events[0].Kind)
	assert.Equal(t, "relation", events[1].Kind)

	// relation_type restricts results to relations.
	events = TemporalEvents(doc, t0, t1, TemporalFilter{RelationType: "manage"}, t2)
	require.Len(t, events, 1)
	assert.Equal(t, "manages", events[0].Relation.RelationType)

	// user_id is an exact match on CreatedBy.
	events = TemporalEvents(doc, t0, t1, TemporalFilter{UserID: "u1"}, t2)
	require.Len(t, events, 2)
	events = TemporalEvents(doc, t0, t1, TemporalFilter{UserID: "u"}, t2)
	assert.Empty(t, events)
}
