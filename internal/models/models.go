package models

import "time"

// Entity represents a node in a workspace knowledge graph. The name is the
// unique key within a workspace.
type Entity struct {
	Name         string            `json:"name"`
	EntityType   string            `json:"entity_type"`
	Observations []string          `json:"observations"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CreatedBy    string            `json:"created_by,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Relation represents a directed, typed edge between two entity names.
// Identity is the (From, To, RelationType) triple, so the same pair of
// entities may be connected by multiple relation types.
type Relation struct {
	From         string            `json:"from"`
	To           string            `json:"to"`
	RelationType string            `json:"relation_type"`
	Strength     float64           `json:"strength"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CreatedBy    string            `json:"created_by,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// DefaultStrength is assigned to relations created without an explicit strength.
const DefaultStrength = 0.8

// ClampStrength restricts a relation strength to the [0, 1] range.
func ClampStrength(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// GraphDocument is the full knowledge graph of one workspace. Entities and
// relations are kept in first-insertion order; uniqueness (entity name,
// relation triple) is maintained by the graph engine, not by the container.
type GraphDocument struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// NewGraphDocument returns an empty document.
func NewGraphDocument() *GraphDocument {
	return &GraphDocument{}
}

// Entity returns a pointer to the entity with the given name, or nil.
func (g *GraphDocument) Entity(name string) *Entity {
	for i := range g.Entities {
		if g.Entities[i].Name == name {
			return &g.Entities[i]
		}
	}
	return nil
}

// Relation returns a pointer to the relation with the given triple, or nil.
func (g *GraphDocument) Relation(from, to, relationType string) *Relation {
	for i := range g.Relations {
		r := &g.Relations[i]
		if r.From == from && r.To == to && r.RelationType == relationType {
			return r
		}
	}
	return nil
}

// Clone returns a deep copy of the document. Engine operations mutate a
// clone so callers keep an untouched snapshot of the loaded graph.
func (g *GraphDocument) Clone() *GraphDocument {
	out := &GraphDocument{}
	if g.Entities != nil {
		out.Entities = make([]Entity, len(g.Entities))
		for i, e := range g.Entities {
			out.Entities[i] = cloneEntity(e)
		}
	}
	if g.Relations != nil {
		out.Relations = make([]Relation, len(g.Relations))
		for i, r := range g.Relations {
			out.Relations[i] = cloneRelation(r)
		}
	}
	return out
}

func cloneEntity(e Entity) Entity {
	if e.Observations != nil {
		obs := make([]string, len(e.Observations))
		copy(obs, e.Observations)
		e.Observations = obs
	}
	e.Metadata = cloneMetadata(e.Metadata)
	return e
}

func cloneRelation(r Relation) Relation {
	r.Metadata = cloneMetadata(r.Metadata)
	return r
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
