package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/graphmem/graphmem/internal/models"
)

// FileStore keeps one JSON document per workspace under a data directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the workspace directory if needed and returns a store.
func NewFileStore(dataDir string) (*FileStore, error) {
	dir := filepath.Join(dataDir, "workspaces")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspaces dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// LoadGraph reads the workspace document, returning an empty graph when no
// file exists yet.
func (s *FileStore) LoadGraph(_ context.Context, workspaceID string) (*models.GraphDocument, error) {
	data, err := os.ReadFile(s.path(workspaceID))
	if os.IsNotExist(err) {
		return models.NewGraphDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace %q: %w", workspaceID, err)
	}
	var doc models.GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode workspace %q: %w", workspaceID, err)
	}
	return &doc, nil
}

// SaveGraph writes the document atomically via a temp file and rename.
func (s *FileStore) SaveGraph(_ context.Context, workspaceID string, doc *models.GraphDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workspace %q: %w", workspaceID, err)
	}
	target := s.path(workspaceID)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write workspace %q: %w", workspaceID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace workspace %q: %w", workspaceID, err)
	}
	return nil
}

// Close is a no-op; the file store holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}

// path maps an opaque workspace id to a file name. Escaping keeps ids with
// path separators from escaping the data directory.
func (s *FileStore) path(workspaceID string) string {
	return filepath.Join(s.dir, url.PathEscape(workspaceID)+".json")
}
