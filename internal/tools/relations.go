package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphmem/graphmem/internal/graph"
)

// --- Input types ---

type CreateRelationsInput struct {
	WorkspaceID string          `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	UserID      string          `json:"user_id,omitempty" jsonschema:"Opaque id of the calling user"`
	Relations   []RelationInput `json:"relations" jsonschema:"Array of relations to create"`
}

type RelationInput struct {
	From         string   `json:"from" jsonschema:"Source entity name"`
	To           string   `json:"to" jsonschema:"Target entity name"`
	RelationType string   `json:"relation_type" jsonschema:"Relation type in active voice (e.g. uses, depends_on, manages)"`
	Strength     *float64 `json:"strength,omitempty" jsonschema:"Confidence in [0,1]; defaults to 0.8"`
}

type SearchRelationsInput struct {
	WorkspaceID  string `json:"workspace_id,omitempty" jsonschema:"Workspace to search (defaults to 'default')"`
	From         string `json:"from,omitempty" jsonschema:"Substring filter on source entity name"`
	To           string `json:"to,omitempty" jsonschema:"Substring filter on target entity name"`
	RelationType string `json:"relation_type,omitempty" jsonschema:"Substring filter on relation type"`
}

type SearchRelationsByUserInput struct {
	WorkspaceID  string `json:"workspace_id,omitempty" jsonschema:"Workspace to search (defaults to 'default')"`
	UserID       string `json:"user_id" jsonschema:"Creator id substring to filter by"`
	RelationType string `json:"relation_type,omitempty" jsonschema:"Optional substring filter on relation type"`
}

type UpdateRelationStrengthInput struct {
	WorkspaceID  string  `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	From         string  `json:"from" jsonschema:"Source entity name"`
	To           string  `json:"to" jsonschema:"Target entity name"`
	RelationType string  `json:"relation_type" jsonschema:"Relation type of the triple"`
	Strength     float64 `json:"strength" jsonschema:"New strength, clamped into [0,1]"`
}

type DeleteRelationsInput struct {
	WorkspaceID string              `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	Relations   []RelationKeyInput `json:"relations" jsonschema:"Triples to delete; absent triples are ignored"`
}

type RelationKeyInput struct {
	From         string `json:"from" jsonschema:"Source entity name"`
	To           string `json:"to" jsonschema:"Target entity name"`
	RelationType string `json:"relation_type" jsonschema:"Relation type of the triple"`
}

// --- Handlers ---

func (t *GraphTools) CreateRelations(ctx context.Context, _ *mcp.CallToolRequest, input CreateRelationsInput) (*mcp.CallToolResult, any, error) {
	inputs := make([]graph.RelationInput, len(input.Relations))
	for i, r := range input.Relations {
		inputs[i] = graph.RelationInput{From: r.From, To: r.To, RelationType: r.RelationType, Strength: r.Strength}
	}

	created, err := t.Service.CreateRelations(ctx, workspaceOrDefault(input.WorkspaceID), inputs, input.UserID)
	if err != nil {
		return toolError("Failed to create relations: %v", err), nil, nil
	}
	return toolJSON(created)
}

func (t *GraphTools) SearchRelations(ctx context.Context, _ *mcp.CallToolRequest, input SearchRelationsInput) (*mcp.CallToolResult, any, error) {
	relations, err := t.Service.SearchRelations(ctx, workspaceOrDefault(input.WorkspaceID), graph.RelationQuery{
		From:         input.From,
		To:           input.To,
		RelationType: input.RelationType,
	})
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}
	return toolJSON(relations)
}

func (t *GraphTools) SearchRelationsByUser(ctx context.Context, _ *mcp.CallToolRequest, input SearchRelationsByUserInput) (*mcp.CallToolResult, any, error) {
	relations, err := t.Service.SearchRelationsByUser(ctx, workspaceOrDefault(input.WorkspaceID), input.UserID, input.RelationType)
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}
	return toolJSON(relations)
}

func (t *GraphTools) UpdateRelationStrength(ctx context.Context, _ *mcp.CallToolRequest, input UpdateRelationStrengthInput) (*mcp.CallToolResult, any, error) {
	relation, err := t.Service.UpdateRelationStrength(ctx, workspaceOrDefault(input.WorkspaceID), input.From, input.To, input.RelationType, input.Strength)
	if err != nil {
		return toolError("Failed to update relation strength: %v", err), nil, nil
	}
	return toolJSON(relation)
}

func (t *GraphTools) DeleteRelations(ctx context.Context, _ *mcp.CallToolRequest, input DeleteRelationsInput) (*mcp.CallToolResult, any, error) {
	keys := make([]graph.RelationKey, len(input.Relations))
	for i, r := range input.Relations {
		keys[i] = graph.RelationKey{From: r.From, To: r.To, RelationType: r.RelationType}
	}

	removed, err := t.Service.DeleteRelations(ctx, workspaceOrDefault(input.WorkspaceID), keys)
	if err != nil {
		return toolError("Failed to delete relations: %v", err), nil, nil
	}
	return toolText(fmt.Sprintf("Deleted %d relations.", removed)), nil, nil
}
