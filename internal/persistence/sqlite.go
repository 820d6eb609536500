package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/graphmem/graphmem/internal/models"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore is the tabular backend: entities, observations, and relations
// as individual rows in one SQLite database, scoped by workspace.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the graph database under dataDir and runs
// the schema.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "graph.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open graph db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate graph db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadGraph reassembles the workspace's whole document from rows, in
// insertion order. A workspace with no rows loads as an empty document.
func (s *SQLiteStore) LoadGraph(ctx context.Context, workspaceID string) (*models.GraphDocument, error) {
	doc := models.NewGraphDocument()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, entity_type, created_at, updated_at, created_by, metadata
		 FROM entities WHERE workspace = ? ORDER BY rowid`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var entityIDs []string
	for rows.Next() {
		var id, createdAt, updatedAt, metadata string
		var e models.Entity
		if err := rows.Scan(&id, &e.Name, &e.EntityType, &createdAt, &updatedAt, &e.CreatedBy, &metadata); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse entity created_at: %w", err)
		}
		if e.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parse entity updated_at: %w", err)
		}
		if e.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, fmt.Errorf("decode entity metadata: %w", err)
		}
		e.Observations = []string{}
		doc.Entities = append(doc.Entities, e)
		entityIDs = append(entityIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range entityIDs {
		obs, err := s.loadObservations(ctx, id)
		if err != nil {
			return nil, err
		}
		doc.Entities[i].Observations = obs
	}

	relRows, err := s.db.QueryContext(ctx,
		`SELECT from_entity, to_entity, relation_type, strength, created_at, updated_at, created_by, metadata
		 FROM relations WHERE workspace = ? ORDER BY rowid`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	defer relRows.Close()

	for relRows.Next() {
		var createdAt, updatedAt, metadata string
		var r models.Relation
		if err := relRows.Scan(&r.From, &r.To, &r.RelationType, &r.Strength, &createdAt, &updatedAt, &r.CreatedBy, &metadata); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse relation created_at: %w", err)
		}
		if r.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parse relation updated_at: %w", err)
		}
		if r.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, fmt.Errorf("decode relation metadata: %w", err)
		}
		doc.Relations = append(doc.Relations, r)
	}
	return doc, relRows.Err()
}

func (s *SQLiteStore) loadObservations(ctx context.Context, entityID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content FROM observations WHERE entity_id = ? ORDER BY position`,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	obs := []string{}
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		obs = append(obs, content)
	}
	return obs, rows.Err()
}

// SaveGraph replaces the workspace's rows with the document's contents in
// one transaction.
func (s *SQLiteStore) SaveGraph(ctx context.Context, workspaceID string, doc *models.GraphDocument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Entity rows cascade to their observation rows.
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE workspace = ?`, workspaceID); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE workspace = ?`, workspaceID); err != nil {
		return fmt.Errorf("clear relations: %w", err)
	}

	for _, e := range doc.Entities {
		metadata, err := encodeMetadata(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %q: %w", e.Name, err)
		}
		entityID := uuid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entities (id, workspace, name, entity_type, created_at, updated_at, created_by, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entityID, workspaceID, e.Name, e.EntityType,
			e.CreatedAt.Format(timeLayout), e.UpdatedAt.Format(timeLayout), e.CreatedBy, metadata,
		)
		if err != nil {
			return fmt.Errorf("insert entity %q: %w", e.Name, err)
		}
		for pos, content := range e.Observations {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO observations (id, entity_id, content, position) VALUES (?, ?, ?, ?)`,
				uuid.New().String(), entityID, content, pos,
			)
			if err != nil {
				return fmt.Errorf("insert observation for %q: %w", e.Name, err)
			}
		}
	}

	for _, r := range doc.Relations {
		metadata, err := encodeMetadata(r.Metadata)
		if err != nil {
			return fmt.Errorf("encode relation metadata: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO relations (id, workspace, from_entity, to_entity, relation_type, strength, created_at, updated_at, created_by, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), workspaceID, r.From, r.To, r.RelationType, r.Strength,
			r.CreatedAt.Format(timeLayout), r.UpdatedAt.Format(timeLayout), r.CreatedBy, metadata,
		)
		if err != nil {
			return fmt.Errorf("insert relation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteEntityRecord removes one entity row (and its observation rows) so a
// following replacement save cannot leave the record orphaned.
func (s *SQLiteStore) DeleteEntityRecord(ctx context.Context, workspaceID, name string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM entities WHERE workspace = ? AND name = ?`,
		workspaceID, name,
	)
	if err != nil {
		return fmt.Errorf("delete entity record %q: %w", name, err)
	}
	return nil
}

// DeleteRelationRecord removes one relation row by its triple.
func (s *SQLiteStore) DeleteRelationRecord(ctx context.Context, workspaceID, from, to, relationType string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM relations WHERE workspace = ? AND from_entity = ? AND to_entity = ? AND relation_type = ?`,
		workspaceID, from, to, relationType,
	)
	if err != nil {
		return fmt.Errorf("delete relation record: %w", err)
	}
	return nil
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMetadata(s string) (map[string]string, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}
