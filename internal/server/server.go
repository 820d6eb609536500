package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphmem/graphmem/internal/tools"
	"github.com/graphmem/graphmem/internal/workspace"
)

// New creates a fully configured MCP server with all graph tools registered.
func New(svc *workspace.Service) *mcp.Server {
	gt := &tools.GraphTools{Service: svc}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "graphmem",
		Version: "0.1.0",
	}, nil)

	// Entity tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_entities",
		Description: "Create entities in the workspace knowledge graph; existing names are merged (observations unioned)",
	}, gt.CreateEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_entities",
		Description: "Search entities by name/type substrings, or by a free-text query across names, types, and observations",
	}, gt.SearchEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_observation",
		Description: "Append an observation to an existing entity (no auto-create)",
	}, gt.AddObservation)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_entity",
		Description: "Union observations into an entity and shallow-merge its metadata",
	}, gt.UpdateEntity)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_entity",
		Description: "Delete an entity and every relation that references it",
	}, gt.DeleteEntity)

	// Relation tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_relations",
		Description: "Create directed typed relations between entity names; existing triples are silently skipped",
	}, gt.CreateRelations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_relations",
		Description: "Search relations by from/to/type substrings",
	}, gt.SearchRelations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_relations_by_user",
		Description: "Search relations by creator id, optionally narrowed by relation type",
	}, gt.SearchRelationsByUser)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_relation_strength",
		Description: "Set the strength of an existing relation (clamped to [0,1])",
	}, gt.UpdateRelationStrength)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_relations",
		Description: "Delete relations by exact (from, to, relation_type) triples; missing triples are ignored",
	}, gt.DeleteRelations)

	// Analysis and bulk tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "detect_duplicates",
		Description: "Find groups of likely duplicate entities by name, type, and observation similarity",
	}, gt.DetectDuplicates)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "merge_entities",
		Description: "Merge duplicate entities into a target, rewiring relations (strategies: combine, replace)",
	}, gt.MergeEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "execute_batch",
		Description: "Apply a list of create/update/delete operations with per-item failure isolation and a single save",
	}, gt.ExecuteBatch)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_temporal_events",
		Description: "List entities and relations created or updated within a time window",
	}, gt.TemporalEvents)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "read_graph",
		Description: "Read the entire knowledge graph of a workspace",
	}, gt.ReadGraph)

	return srv
}
