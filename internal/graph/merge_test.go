package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphmem/graphmem/internal/models"
)

func mergeFixture(t *testing.T) *models.GraphDocument {
	t.Helper()
	doc := models.NewGraphDocument()
	doc, _, err := CreateEntities(doc, []EntityInput{
		{Name: "A", EntityType: "Person", Observations: []string{"engineer"}},
		{Name: "B", EntityType: "Person", Observations: []string{"engineer", "likes tea"}},
		{Name: "C", EntityType: "Person", Observations: []string{"manager"}},
		{Name: "D", EntityType: "Company", Observations: []string{}},
	}, "user-1", t0)
	require.NoError(t, err)
	doc.Entity("A").Metadata = map[string]string{"team": "infra"}
	doc.Entity("B").Metadata = map[string]string{"team": "platform", "city": "berlin"}

	doc, _, err = CreateRelations(doc, []RelationInput{
		{From: "A", To: "B", RelationType: "knows"},
		{From: "B", To: "D", RelationType: "works_at"},
		{From: "C", To: "B", RelationType: "manages"},
	}, "user-1", t0)
	require.NoError(t, err)
	return doc
}

func TestMergeEntitiesCombine(t *testing.T) {
	doc := mergeFixture(t)

	doc, merged, err := MergeEntities(doc, "A", []string{"B"}, StrategyCombine, t1)
	require.NoError(t, err)

	assert.Equal(t, "A", merged.Name)
	assert.Equal(t, []string{"engineer", "likes tea"}, merged.Observations)
	assert.Equal(t, map[string]string{"team": "platform", "city": "berlin"}, merged.Metadata,
		"source metadata overwrites the target's keys")
	assert.Equal(t, t1, merged.UpdatedAt)

	assert.Nil(t, doc.Entity("B"), "sources are removed")
	require.NotNil(t, doc.Entity("A"))

	// (A,B,knows) became a self-loop and must be gone; the others rewired.
	assert.Nil(t, doc.Relation("A", "A", "knows"))
	assert.NotNil(t, doc.Relation("A", "D", "works_at"))
	assert.NotNil(t, doc.Relation("C", "A", "manages"))
	assert.Len(t, doc.Relations, 2)
}

func TestMergeEntitiesReplace(t *testing.T) {
	doc := mergeFixture(t)

	doc, merged, err := MergeEntities(doc, "A", []string{"B"}, StrategyReplace, t1)
	require.NoError(t, err)

	assert.Equal(t, []string{"engineer"}, merged.Observations, "replace keeps the target as-is")
	assert.Equal(t, map[string]string{"team": "infra"}, merged.Metadata)
	assert.Nil(t, doc.Entity("B"), "sources are still absorbed")
}

func TestMergeEntitiesMultipleSources(t *testing.T) {
	doc := mergeFixture(t)

	doc, merged, err := MergeEntities(doc, "A", []string{"B", "C"}, StrategyCombine, t1)
	require.NoError(t, err)
	assert.Equal(t, []string{"engineer", "likes tea", "manager"}, merged.Observations)
	assert.Nil(t, doc.Entity("B"))
	assert.Nil(t, doc.Entity("C"))
	// (C,B,manages) rewrote to (A,A,manages): dropped as a self-loop.
	require.Len(t, doc.Relations, 1)
	assert.Equal(t, "works_at", doc.Relations[0].RelationType)
}

func TestMergeEntitiesMissingSourceFailsWhole(t *testing.T) {
	doc := mergeFixture(t)

	_, _, err := MergeEntities(doc, "A", []string{"B", "Nobody"}, StrategyCombine, t1)
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.NotNil(t, doc.Entity("B"), "no partial merge")

	_, _, err = MergeEntities(doc, "Nobody", []string{"B"}, StrategyCombine, t1)
	require.ErrorAs(t, err, &nferr)
}

func TestMergeEntitiesBadStrategy(t *testing.T) {
	doc := mergeFixture(t)
	var verr *ValidationError
	_, _, err := MergeEntities(doc, "A", []string{"B"}, "union", t1)
	require.ErrorAs(t, err, &verr)
	_, _, err = MergeEntities(doc, "A", nil, StrategyCombine, t1)
	require.ErrorAs(t, err, &verr)
	_, _, err = MergeEntities(doc, "A", []string{"A"}, StrategyCombine, t1)
	require.ErrorAs(t, err, &verr)
}

func TestMergeEntitiesKeepsStoredSelfLoops(t *testing.T) {
	doc := mergeFixture(t)
	doc, _, err := CreateEntities(doc, []EntityInput{
		{Name: "X", EntityType: "Document", Observations: []string{}},
	}, "", t0)
	require.NoError(t, err)
	doc, _, err = CreateRelations(doc, []RelationInput{
		{From: "X", To: "X", RelationType: "references"},
	}, "", t0)
	require.NoError(t, err)

	// Merging A and B does not touch X; its stored self-loop must survive.
	doc, _, err = MergeEntities(doc, "A", []string{"B"}, StrategyCombine, t1)
	require.NoError(t, err)
	assert.NotNil(t, doc.Relation("X", "X", "references"),
		"only self-loops produced by the rewrite are dropped")
	assert.Nil(t, doc.Relation("A", "A", "knows"))
}

func TestMergeEntitiesCollapsesDuplicateTriples(t *testing.T) {
	doc := mergeFixture(t)
	doc, _, err := CreateRelations(doc, []RelationInput{
		{From: "A", To: "D", RelationType: "works_at", Strength: floatPtr(0.4)},
	}, "", t0)
	require.NoError(t, err)

	// B's (B,D,works_at) rewires onto the existing (A,D,works_at); the
	// earlier relation wins and triples stay unique.
	doc, _, err = MergeEntities(doc, "A", []string{"B"}, StrategyCombine, t1)
	require.NoError(t, err)

	var works []models.Relation
	for _, r := range doc.Relations {
		if r.From == "A" && r.To == "D" && r.RelationType == "works_at" {
			works = append(works, r)
		}
	}
	require.Len(t, works, 1)
	assert.Equal(t, models.DefaultStrength, works[0].Strength)
}
