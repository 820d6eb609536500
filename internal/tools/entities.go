package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphmem/graphmem/internal/graph"
)

// --- Input types ---

type CreateEntitiesInput struct {
	WorkspaceID string        `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	UserID      string        `json:"user_id,omitempty" jsonschema:"Opaque id of the calling user"`
	Entities    []EntityInput `json:"entities" jsonschema:"Array of entities to create or merge into"`
}

type EntityInput struct {
	Name         string   `json:"name" jsonschema:"Entity name, unique within the workspace"`
	EntityType   string   `json:"entity_type" jsonschema:"Entity type (e.g. person, technology, concept)"`
	Observations []string `json:"observations" jsonschema:"Observations about the entity (may be empty, must be present)"`
}

type SearchEntitiesInput struct {
	WorkspaceID string `json:"workspace_id,omitempty" jsonschema:"Workspace to search (defaults to 'default')"`
	Query       string `json:"query,omitempty" jsonschema:"Free-text query matched against name, type, and observations; overrides name/entity_type"`
	Name        string `json:"name,omitempty" jsonschema:"Substring filter on entity name"`
	EntityType  string `json:"entity_type,omitempty" jsonschema:"Substring filter on entity type"`
}

type AddObservationInput struct {
	WorkspaceID string `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	UserID      string `json:"user_id,omitempty" jsonschema:"Opaque id of the calling user"`
	EntityName  string `json:"entity_name" jsonschema:"Name of an existing entity"`
	Observation string `json:"observation" jsonschema:"Observation text to append"`
}

type UpdateEntityInput struct {
	WorkspaceID  string            `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	UserID       string            `json:"user_id,omitempty" jsonschema:"Opaque id of the calling user"`
	EntityName   string            `json:"entity_name" jsonschema:"Name of an existing entity"`
	Observations []string          `json:"observations" jsonschema:"Observations to union into the entity"`
	Metadata     map[string]string `json:"metadata,omitempty" jsonschema:"Metadata keys to shallow-merge (new keys overwrite)"`
}

type DeleteEntityInput struct {
	WorkspaceID string `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	EntityName  string `json:"entity_name" jsonschema:"Name of the entity to delete (relations cascade)"`
}

type ReadGraphInput struct {
	WorkspaceID string `json:"workspace_id,omitempty" jsonschema:"Workspace to read (defaults to 'default')"`
}

// --- Handlers ---

func (t *GraphTools) CreateEntities(ctx context.Context, _ *mcp.CallToolRequest, input CreateEntitiesInput) (*mcp.CallToolResult, any, error) {
	inputs := make([]graph.EntityInput, len(input.Entities))
	for i, e := range input.Entities {
		inputs[i] = graph.EntityInput{Name: e.Name, EntityType: e.EntityType, Observations: e.Observations}
	}

	created, err := t.Service.CreateEntities(ctx, workspaceOrDefault(input.WorkspaceID), inputs, input.UserID)
	if err != nil {
		return toolError("Failed to create entities: %v", err), nil, nil
	}
	return toolJSON(created)
}

func (t *GraphTools) SearchEntities(ctx context.Context, _ *mcp.CallToolRequest, input SearchEntitiesInput) (*mcp.CallToolResult, any, error) {
	ws := workspaceOrDefault(input.WorkspaceID)

	if input.Query != "" {
		entities, err := t.Service.SearchEntitiesText(ctx, ws, input.Query)
		if err != nil {
			return toolError("Search failed: %v", err), nil, nil
		}
		return toolJSON(entities)
	}

	entities, err := t.Service.SearchEntities(ctx, ws, graph.EntityQuery{
		Name:       input.Name,
		EntityType: input.EntityType,
	})
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}
	return toolJSON(entities)
}

func (t *GraphTools) AddObservation(ctx context.Context, _ *mcp.CallToolRequest, input AddObservationInput) (*mcp.CallToolResult, any, error) {
	entity, err := t.Service.AddObservation(ctx, workspaceOrDefault(input.WorkspaceID), input.EntityName, input.Observation, input.UserID)
	if err != nil {
		return toolError("Failed to add observation to %q: %v", input.EntityName, err), nil, nil
	}
	return toolJSON(entity)
}

func (t *GraphTools) UpdateEntity(ctx context.Context, _ *mcp.CallToolRequest, input UpdateEntityInput) (*mcp.CallToolResult, any, error) {
	entity, err := t.Service.UpdateEntity(ctx, workspaceOrDefault(input.WorkspaceID), input.EntityName, input.Observations, input.Metadata, input.UserID)
	if err != nil {
		return toolError("Failed to update entity %q: %v", input.EntityName, err), nil, nil
	}
	return toolJSON(entity)
}

func (t *GraphTools) DeleteEntity(ctx context.Context, _ *mcp.CallToolRequest, input DeleteEntityInput) (*mcp.CallToolResult, any, error) {
	if err := t.Service.DeleteEntity(ctx, workspaceOrDefault(input.WorkspaceID), input.EntityName); err != nil {
		return toolError("Failed to delete entity %q: %v", input.EntityName, err), nil, nil
	}
	return toolText("Deleted entity " + input.EntityName + " and its relations."), nil, nil
}

func (t *GraphTools) ReadGraph(ctx context.Context, _ *mcp.CallToolRequest, input ReadGraphInput) (*mcp.CallToolResult, any, error) {
	doc, err := t.Service.ReadGraph(ctx, workspaceOrDefault(input.WorkspaceID))
	if err != nil {
		return toolError("Failed to read graph: %v", err), nil, nil
	}
	return toolJSON(doc)
}
