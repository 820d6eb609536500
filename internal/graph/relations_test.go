package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphmem/graphmem/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestCreateRelations(t *testing.T) {
	doc := models.NewGraphDocument()

	doc, created, err := CreateRelations(doc, []RelationInput{
		{From: "A", To: "B", RelationType: "knows"},
		{From: "A", To: "B", RelationType: "manages", Strength: floatPtr(0.5)},
	}, "user-1", t0)
	require.NoError(t, err)

	require.Len(t, created, 2)
	assert.Equal(t, models.DefaultStrength, created[0].Strength)
	assert.Equal(t, 0.5, created[1].Strength)
	assert.Equal(t, "user-1", created[0].CreatedBy)
	assert.Equal(t, t0, created[0].CreatedAt)
	require.Len(t, doc.Relations, 2, "same pair with different types stores two relations")
}

func TestCreateRelationsSkipsExistingTriples(t *testing.T) {
	doc := models.NewGraphDocument()
	doc, _, err := CreateRelations(doc, []RelationInput{
		{From: "A", To: "B", RelationType: "knows", Strength: floatPtr(0.9)},
	}, "", t0)
	require.NoError(t, err)

	doc, created, err := CreateRelations(doc, []RelationInput{
		{From: "A", To: "B", RelationType: "knows", Strength: floatPtr(0.1)},
		{From: "B", To: "A", RelationType: "knows"},
	}, "", t1)
	require.NoError(t, err)

	require.Len(t, created, 1, "the duplicate triple is silently dropped")
	assert.Equal(t, "B", created[0].From)

	require.Len(t, doc.Relations, 2)
	existing := doc.Relation("A", "B", "knows")
	assert.Equal(t, 0.9, existing.Strength, "the stored relation is not updated by a duplicate create")
	assert.Equal(t, t0, existing.UpdatedAt)
}

func TestCreateRelationsClampsStrength(t *testing.T) {
	doc := models.NewGraphDocument()
	doc, created, err := CreateRelations(doc, []RelationInput{
		{From: "A", To: "B", RelationType: "x", Strength: floatPtr(1.7)},
		{From: "A", To: "B", RelationType: "y", Strength: floatPtr(-0.3)},
	}, "", t0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, created[0].Strength)
	assert.Equal(t, 0.0, created[1].Strength)
	require.Len(t, doc.Relations, 2)
}

func TestCreateRelationsValidation(t *testing.T) {
	doc := models.NewGraphDocument()
	_, _, err := CreateRelations(doc, []RelationInput{{From: "A", To: "B"}}, "", t0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSearchRelations(t *testing.T) {
	doc := models.NewGraphDocument()
	doc, _, err := CreateRelations(doc, []RelationInput{
		{From: "Alice", To: "Bob", RelationType: "knows"},
		{From: "Alice", To: "Acme", RelationType: "works_at"},
		{From: "Bob", To: "Acme", RelationType: "works_at"},
	}, "", t0)
	require.NoError(t, err)

	assert.Len(t, SearchRelations(doc, RelationQuery{}), 3)
	assert.Len(t, SearchRelations(doc, RelationQuery{From: "alice"}), 2)
	assert.Len(t, SearchRelations(doc, RelationQuery{RelationType: "works"}), 2)

	narrow := SearchRelations(doc, RelationQuery{From: "bob", To: "acme"})
	require.Len(t, narrow, 1)
	assert.Equal(t, "works_at", narrow[0].RelationType)
}

func TestSearchRelationsByUser(t *testing.T) {
	doc := models.NewGraphDocument()
	doc, _, err := CreateRelations(doc, []RelationInput{
		{From: "A", To: "B", RelationType: "knows"},
	}, "user-alpha", t0)
	require.NoError(t, err)
	doc, _, err = CreateRelations(doc, []RelationInput{
		{From: "B", To: "C", RelationType: "manages"},
	}, "user-beta", t0)
	require.NoError(t, err)

	assert.Len(t, SearchRelationsByUser(doc, "user", ""), 2)
	assert.Len(t, SearchRelationsByUser(doc, "alpha", ""), 1)
	assert.Len(t, SearchRelationsByUser(doc, "user", "manage"), 1)
	assert.Empty(t, SearchRelationsByUser(doc, "alpha", "manage"))
}

func TestUpdateRelationStrength(t *testing.T) {
	doc := models.NewGraphDocument()
	doc, _, err := CreateRelations(doc, []RelationInput{
		{From: "A", To: "B", RelationType: "knows"},
	}, "", t0)
	require.NoError(t, err)

	doc, rel, err := UpdateRelationStrength(doc, "A", "B", "knows", 2.5, t1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rel.Strength)
	assert.Equal(t, t1, rel.UpdatedAt)
	assert.Equal(t, t0, rel.CreatedAt)

	_, _, err = UpdateRelationStrength(doc, "A", "B", "missing_type", 0.5, t1)
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestDeleteRelations(t *testing.T) {
	doc := models.NewGraphDocument()
	doc, _, err := CreateRelations(doc, []RelationInput{
		{From: "A", To: "B", RelationType: "knows"},
		{From: "A", To: "B", RelationType: "manages"},
		{From: "B", To: "C", RelationType: "knows"},
	}, "", t0)
	require.NoError(t, err)

	doc, removed := DeleteRelations(doc, []RelationKey{
		{From: "A", To: "B", RelationType: "knows"},
		{From: "X", To: "Y", RelationType: "absent"},
	})
	assert.Equal(t, 1, removed, "absent triples are ignored without error")
	require.Len(t, doc.Relations, 2)
	assert.Nil(t, doc.Relation("A", "B", "knows"))
	assert.NotNil(t, doc.Relation("A", "B", "manages"))
}
