// Package persistence defines the storage contract for workspace graph
// documents and provides the file and SQLite backends.
//
// The contract is whole-document: LoadGraph returns a full snapshot (an
// empty document, never an error, when nothing is stored) and SaveGraph
// overwrites the stored document. Backends that index entities and
// relations as individual records additionally implement RecordDeleter so
// delete and merge operations do not leave orphaned records behind.
package persistence

import (
	"context"

	"github.com/graphmem/graphmem/internal/models"
)

// Store loads and saves whole graph documents, one per workspace.
type Store interface {
	// LoadGraph returns the workspace's graph, or an empty document when
	// the workspace has never been saved.
	LoadGraph(ctx context.Context, workspaceID string) (*models.GraphDocument, error)

	// SaveGraph overwrites the workspace's stored graph with doc.
	SaveGraph(ctx context.Context, workspaceID string, doc *models.GraphDocument) error

	// Close releases backend resources.
	Close() error
}

// RecordDeleter is an optional store capability for backends that keep
// entities and relations as individual records.
type RecordDeleter interface {
	DeleteEntityRecord(ctx context.Context, workspaceID, name string) error
	DeleteRelationRecord(ctx context.Context, workspaceID, from, to, relationType string) error
}
