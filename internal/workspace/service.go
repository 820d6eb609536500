// Package workspace orchestrates graph engine operations against persisted
// workspace documents: load a snapshot, apply one engine operation, save
// the result when it mutated the graph.
//
// Workspaces are the isolation unit. There is no cross-writer coordination:
// two concurrent callers on the same workspace race and the later save
// wins.
package workspace

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/graphmem/graphmem/internal/graph"
	"github.com/graphmem/graphmem/internal/models"
	"github.com/graphmem/graphmem/internal/persistence"
)

// Service runs graph operations for workspaces backed by a persistence store.
type Service struct {
	store persistence.Store
	log   *zap.Logger
	now   func() time.Time
}

// New creates a service. The clock defaults to time.Now.
func New(store persistence.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) load(ctx context.Context, workspaceID string) (*models.GraphDocument, error) {
	doc, err := s.store.LoadGraph(ctx, workspaceID)
	if err != nil {
		return nil, &graph.PersistenceError{Op: "load", Err: err}
	}
	return doc, nil
}

func (s *Service) save(ctx context.Context, workspaceID string, doc *models.GraphDocument) error {
	if err := s.store.SaveGraph(ctx, workspaceID, doc); err != nil {
		return &graph.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// ReadGraph returns the workspace's full document.
func (s *Service) ReadGraph(ctx context.Context, workspaceID string) (*models.GraphDocument, error) {
	return s.load(ctx, workspaceID)
}

// CreateEntities creates or merges entities and persists the result.
func (s *Service) CreateEntities(ctx context.Context, workspaceID string, inputs []graph.EntityInput, userID string) ([]models.Entity, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	updated, touched, err := graph.CreateEntities(doc, inputs, userID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, workspaceID, updated); err != nil {
		return nil, err
	}
	s.log.Info("entities created",
		zap.String("workspace", workspaceID),
		zap.Int("count", len(touched)))
	return touched, nil
}

// SearchEntities runs a structured entity search.
func (s *Service) SearchEntities(ctx context.Context, workspaceID string, q graph.EntityQuery) ([]models.Entity, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return graph.SearchEntities(doc, q), nil
}

// SearchEntitiesText runs a free-text entity search.
func (s *Service) SearchEntitiesText(ctx context.Context, workspaceID, query string) ([]models.Entity, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return graph.SearchEntitiesText(doc, query), nil
}

// AddObservation appends one observation to an existing entity.
func (s *Service) AddObservation(ctx context.Context, workspaceID, entityName, observation, userID string) (models.Entity, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return models.Entity{}, err
	}
	updated, entity, err := graph.AddObservation(doc, entityName, observation, userID, s.now())
	if err != nil {
		return models.Entity{}, err
	}
	if err := s.save(ctx, workspaceID, updated); err != nil {
		return models.Entity{}, err
	}
	return entity, nil
}

// UpdateEntity unions observations and shallow-merges metadata on an entity.
func (s *Service) UpdateEntity(ctx context.Context, workspaceID, entityName string, observations []string, metadata map[string]string, userID string) (models.Entity, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return models.Entity{}, err
	}
	updated, entity, err := graph.UpdateEntity(doc, entityName, observations, metadata, userID, s.now())
	if err != nil {
		return models.Entity{}, err
	}
	if err := s.save(ctx, workspaceID, updated); err != nil {
		return models.Entity{}, err
	}
	return entity, nil
}

// DeleteEntity removes an entity with relation cascade and persists.
func (s *Service) DeleteEntity(ctx context.Context, workspaceID, entityName string) error {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return err
	}
	updated, err := graph.DeleteEntity(doc, entityName)
	if err != nil {
		return err
	}
	s.deleteVanishedRecords(ctx, workspaceID, doc, updated)
	if err := s.save(ctx, workspaceID, updated); err != nil {
		return err
	}
	s.log.Info("entity deleted",
		zap.String("workspace", workspaceID),
		zap.String("entity", entityName))
	return nil
}

// CreateRelations creates relations, silently skipping existing triples.
func (s *Service) CreateRelations(ctx context.Context, workspaceID string, inputs []graph.RelationInput, userID string) ([]models.Relation, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	updated, created, err := graph.CreateRelations(doc, inputs, userID, s.now())
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		if err := s.save(ctx, workspaceID, updated); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// SearchRelations runs a structured relation search.
func (s *Service) SearchRelations(ctx context.Context, workspaceID string, q graph.RelationQuery) ([]models.Relation, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return graph.SearchRelations(doc, q), nil
}

// SearchRelationsByUser filters relations by creator.
func (s *Service) SearchRelationsByUser(ctx context.Context, workspaceID, userID, relationType string) ([]models.Relation, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return graph.SearchRelationsByUser(doc, userID, relationType), nil
}

// UpdateRelationStrength sets an existing relation's strength.
func (s *Service) UpdateRelationStrength(ctx context.Context, workspaceID, from, to, relationType string, strength float64) (models.Relation, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return models.Relation{}, err
	}
	updated, relation, err := graph.UpdateRelationStrength(doc, from, to, relationType, strength, s.now())
	if err != nil {
		return models.Relation{}, err
	}
	if err := s.save(ctx, workspaceID, updated); err != nil {
		return models.Relation{}, err
	}
	return relation, nil
}

// DeleteRelations removes relations by exact triple, best-effort.
func (s *Service) DeleteRelations(ctx context.Context, workspaceID string, keys []graph.RelationKey) (int, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	updated, removed := graph.DeleteRelations(doc, keys)
	if removed == 0 {
		return 0, nil
	}
	s.deleteVanishedRecords(ctx, workspaceID, doc, updated)
	if err := s.save(ctx, workspaceID, updated); err != nil {
		return 0, err
	}
	return removed, nil
}

// DetectDuplicates scores entity pairs and reports duplicate groups. The
// threshold is taken literally; a zero threshold groups everything of a
// type. Callers default an omitted threshold themselves.
func (s *Service) DetectDuplicates(ctx context.Context, workspaceID string, threshold float64) ([]graph.DuplicateGroup, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return graph.DetectDuplicates(doc, threshold)
}

// MergeEntities absorbs the sources into the target and persists.
func (s *Service) MergeEntities(ctx context.Context, workspaceID, target string, sources []string, strategy string) (models.Entity, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return models.Entity{}, err
	}
	updated, merged, err := graph.MergeEntities(doc, target, sources, strategy, s.now())
	if err != nil {
		return models.Entity{}, err
	}
	s.deleteVanishedRecords(ctx, workspaceID, doc, updated)
	if err := s.save(ctx, workspaceID, updated); err != nil {
		return models.Entity{}, err
	}
	s.log.Info("entities merged",
		zap.String("workspace", workspaceID),
		zap.String("target", target),
		zap.Int("sources", len(sources)))
	return merged, nil
}

// ExecuteBatch applies a heterogeneous batch with per-item isolation. The
// working graph is persisted once, and only when at least one operation
// succeeded.
func (s *Service) ExecuteBatch(ctx context.Context, workspaceID string, ops []graph.BatchOperation) (graph.BatchResult, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return graph.BatchResult{}, err
	}
	updated, result := graph.ExecuteBatch(doc, ops, s.now())
	if result.Successful > 0 {
		s.deleteVanishedRecords(ctx, workspaceID, doc, updated)
		if err := s.save(ctx, workspaceID, updated); err != nil {
			return graph.BatchResult{}, err
		}
	}
	s.log.Info("batch executed",
		zap.String("workspace", workspaceID),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed))
	return result, nil
}

// TemporalEvents returns entities and relations created or updated inside
// the window.
func (s *Service) TemporalEvents(ctx context.Context, workspaceID string, start, end time.Time, filter graph.TemporalFilter) ([]graph.TemporalEvent, error) {
	doc, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return graph.TemporalEvents(doc, start, end, filter, s.now()), nil
}

// deleteVanishedRecords tells record-indexing backends which entities and
// relation triples disappeared between two document states, so the
// replacement save cannot leave orphaned records. Backends without
// record-level indexing skip this entirely. Failures are logged, not
// fatal: the whole-document save that follows is authoritative.
func (s *Service) deleteVanishedRecords(ctx context.Context, workspaceID string, before, after *models.GraphDocument) {
	deleter, ok := s.store.(persistence.RecordDeleter)
	if !ok {
		return
	}
	for _, e := range before.Entities {
		if after.Entity(e.Name) == nil {
			if err := deleter.DeleteEntityRecord(ctx, workspaceID, e.Name); err != nil {
				s.log.Warn("delete entity record",
					zap.String("workspace", workspaceID),
					zap.String("entity", e.Name),
					zap.Error(err))
			}
		}
	}
	for _, r := range before.Relations {
		if after.Relation(r.From, r.To, r.RelationType) == nil {
			if err := deleter.DeleteRelationRecord(ctx, workspaceID, r.From, r.To, r.RelationType); err != nil {
				s.log.Warn("delete relation record",
					zap.String("workspace", workspaceID),
					zap.String("relation", r.From+"->"+r.To),
					zap.Error(err))
			}
		}
	}
}
