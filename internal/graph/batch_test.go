package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphmem/graphmem/internal/models"
)

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestExecuteBatchIsolation(t *testing.T) {
	doc := models.NewGraphDocument()

	ops := []BatchOperation{
		{Type: OpCreateEntity, UserID: "u1", Data: rawJSON(t, EntityInput{Name: "X", EntityType: "Thing", Observations: []string{}})},
		{Type: OpDeleteEntity, Data: rawJSON(t, BatchDeleteEntityData{EntityName: "missing"})},
		{Type: OpCreateEntity, UserID: "u1", Data: rawJSON(t, EntityInput{Name: "Y", EntityType: "Thing", Observations: []string{}})},
	}

	updated, result := ExecuteBatch(doc, ops, t0)

	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "delete_entity")

	require.Len(t, result.Results, 3)
	assert.NotNil(t, result.Results[0])
	assert.Nil(t, result.Results[1], "failed operations report nil results")
	assert.NotNil(t, result.Results[2])

	assert.NotNil(t, updated.Entity("X"), "a mid-batch failure does not roll back earlier operations")
	assert.NotNil(t, updated.Entity("Y"), "nor abort later ones")
	assert.Empty(t, doc.Entities, "the original document stays untouched")
}

func TestExecuteBatchMixedOperations(t *testing.T) {
	doc := models.NewGraphDocument()
	doc, _, err := CreateEntities(doc, []EntityInput{
		{Name: "A", EntityType: "Person", Observations: []string{"engineer"}},
		{Name: "B", EntityType: "Person", Observations: []string{}},
	}, "", t0)
	require.NoError(t, err)

	ops := []BatchOperation{
		{Type: OpCreateRelation, Data: rawJSON(t, RelationInput{From: "A", To: "B", RelationType: "knows"})},
		{Type: OpUpdateEntity, Data: rawJSON(t, BatchUpdateEntityData{EntityName: "A", Observations: []string{"speaks French"}})},
		{Type: OpDeleteEntity, Data: rawJSON(t, BatchDeleteEntityData{EntityName: "B"})},
	}

	updated, result := ExecuteBatch(doc, ops, t1)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 0, result.Failed)

	assert.Equal(t, []string{"engineer", "speaks French"}, updated.Entity("A").Observations)
	assert.Nil(t, updated.Entity("B"))
	assert.Empty(t, updated.Relations, "deleting B cascades the relation created earlier in the batch")
}

func TestExecuteBatchSequentialVisibility(t *testing.T) {
	doc := models.NewGraphDocument()

	// The update sees the entity created two operations earlier in the
	// same batch.
	ops := []BatchOperation{
		{Type: OpCreateEntity, Data: rawJSON(t, EntityInput{Name: "X", EntityType: "Thing", Observations: []string{}})},
		{Type: OpUpdateEntity, Data: rawJSON(t, BatchUpdateEntityData{EntityName: "X", Observations: []string{"fresh"}})},
	}
	updated, result := ExecuteBatch(doc, ops, t0)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, []string{"fresh"}, updated.Entity("X").Observations)
}

func TestExecuteBatchDuplicateRelationIsSuccess(t *testing.T) {
	doc := models.NewGraphDocument()
	doc, _, err := CreateRelations(doc, []RelationInput{{From: "A", To: "B", RelationType: "knows"}}, "", t0)
	require.NoError(t, err)

	ops := []BatchOperation{
		{Type: OpCreateRelation, Data: rawJSON(t, RelationInput{From: "A", To: "B", RelationType: "knows"})},
	}
	updated, result := ExecuteBatch(doc, ops, t1)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, updated.Relations, 1)
}

func TestExecuteBatchUnknownTypeAndBadPayload(t *testing.T) {
	doc := models.NewGraphDocument()
	ops := []BatchOperation{
		{Type: "drop_table", Data: rawJSON(t, map[string]any{})},
		{Type: OpCreateEntity, Data: json.RawMessage(`{"name":`)},
	}
	_, result := ExecuteBatch(doc, ops, t0)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "drop_table")
	assert.Contains(t, result.Errors[1], "create_entity")
}
