package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphmem/graphmem/internal/graph"
)

// --- Input types ---

type DetectDuplicatesInput struct {
	WorkspaceID string   `json:"workspace_id,omitempty" jsonschema:"Workspace to scan (defaults to 'default')"`
	Threshold   *float64 `json:"threshold,omitempty" jsonschema:"Similarity cutoff in [0,1]; defaults to 0.8 when omitted"`
}

type MergeEntitiesInput struct {
	WorkspaceID string   `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	Target      string   `json:"target" jsonschema:"Entity that absorbs the sources"`
	Sources     []string `json:"sources" jsonschema:"Entities to merge into the target and remove"`
	Strategy    string   `json:"strategy" jsonschema:"Merge strategy: combine or replace"`
}

type ExecuteBatchInput struct {
	WorkspaceID string                 `json:"workspace_id,omitempty" jsonschema:"Workspace to operate on (defaults to 'default')"`
	Operations  []graph.BatchOperation `json:"operations" jsonschema:"Heterogeneous operations applied in order with per-item isolation"`
}

type TemporalEventsInput struct {
	WorkspaceID  string `json:"workspace_id,omitempty" jsonschema:"Workspace to query (defaults to 'default')"`
	Start        string `json:"start,omitempty" jsonschema:"Window start, RFC3339; defaults to the Unix epoch"`
	End          string `json:"end,omitempty" jsonschema:"Window end, RFC3339; defaults to now"`
	EntityName   string `json:"entity_name,omitempty" jsonschema:"Substring filter on entity name or relation endpoints"`
	RelationType string `json:"relation_type,omitempty" jsonschema:"Substring filter on relation type (restricts results to relations)"`
	UserID       string `json:"user_id,omitempty" jsonschema:"Exact match on the record creator"`
}

// --- Handlers ---

func (t *GraphTools) DetectDuplicates(ctx context.Context, _ *mcp.CallToolRequest, input DetectDuplicatesInput) (*mcp.CallToolResult, any, error) {
	// An omitted threshold is distinct from an explicit zero, which is a
	// valid cutoff that groups everything of a type.
	threshold := graph.DefaultDuplicateThreshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}
	groups, err := t.Service.DetectDuplicates(ctx, workspaceOrDefault(input.WorkspaceID), threshold)
	if err != nil {
		return toolError("Failed to detect duplicates: %v", err), nil, nil
	}
	if groups == nil {
		groups = []graph.DuplicateGroup{}
	}
	return toolJSON(groups)
}

func (t *GraphTools) MergeEntities(ctx context.Context, _ *mcp.CallToolRequest, input MergeEntitiesInput) (*mcp.CallToolResult, any, error) {
	merged, err := t.Service.MergeEntities(ctx, workspaceOrDefault(input.WorkspaceID), input.Target, input.Sources, input.Strategy)
	if err != nil {
		return toolError("Failed to merge entities: %v", err), nil, nil
	}
	return toolJSON(merged)
}

func (t *GraphTools) ExecuteBatch(ctx context.Context, _ *mcp.CallToolRequest, input ExecuteBatchInput) (*mcp.CallToolResult, any, error) {
	result, err := t.Service.ExecuteBatch(ctx, workspaceOrDefault(input.WorkspaceID), input.Operations)
	if err != nil {
		return toolError("Failed to execute batch: %v", err), nil, nil
	}
	return toolJSON(result)
}

func (t *GraphTools) TemporalEvents(ctx context.Context, _ *mcp.CallToolRequest, input TemporalEventsInput) (*mcp.CallToolResult, any, error) {
	var start, end time.Time
	var err error
	if input.Start != "" {
		if start, err = time.Parse(time.RFC3339, input.Start); err != nil {
			return toolError("Invalid start time %q: %v", input.Start, err), nil, nil
		}
	}
	if input.End != "" {
		if end, err = time.Parse(time.RFC3339, input.End); err != nil {
			return toolError("Invalid end time %q: %v", input.End, err), nil, nil
		}
	}

	events, err := t.Service.TemporalEvents(ctx, workspaceOrDefault(input.WorkspaceID), start, end, graph.TemporalFilter{
		EntityName:   input.EntityName,
		RelationType: input.RelationType,
		UserID:       input.UserID,
	})
	if err != nil {
		return toolError("Failed to query temporal events: %v", err), nil, nil
	}
	if events == nil {
		events = []graph.TemporalEvent{}
	}
	return toolJSON(events)
}
