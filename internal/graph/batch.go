package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/graphmem/graphmem/internal/models"
)

// Batch operation types.
const (
	OpCreateEntity   = "create_entity"
	OpCreateRelation = "create_relation"
	OpUpdateEntity   = "update_entity"
	OpDeleteEntity   = "delete_entity"
)

// BatchOperation is one mutation in a heterogeneous batch. Data carries the
// operation-specific payload and is decoded per type by the executor.
type BatchOperation struct {
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
	UserID string          `json:"user_id,omitempty"`
}

// BatchUpdateEntityData is the payload for an update_entity batch operation.
type BatchUpdateEntityData struct {
	EntityName   string            `json:"entity_name"`
	Observations []string          `json:"observations"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// BatchDeleteEntityData is the payload for a delete_entity batch operation.
type BatchDeleteEntityData struct {
	EntityName string `json:"entity_name"`
}

// BatchResult reports the outcome of a batch. Results holds one entry per
// input operation in order, nil for operations that failed.
type BatchResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
	Results    []any    `json:"results"`
}

// ExecuteBatch applies the operations sequentially to a single working copy
// of the graph. Each operation is isolated: a failure is recorded, tagged
// with the operation type, and neither aborts the batch nor rolls back
// earlier successes. The returned document reflects every successful
// operation; the caller should persist it only when Successful is at least
// one.
func ExecuteBatch(doc *models.GraphDocument, ops []BatchOperation, now time.Time) (*models.GraphDocument, BatchResult) {
	working := doc.Clone()
	result := BatchResult{Results: make([]any, len(ops))}

	for i, op := range ops {
		updated, opResult, err := applyBatchOperation(working, op, now)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", op.Type, err))
			continue
		}
		working = updated
		result.Successful++
		result.Results[i] = opResult
	}
	return working, result
}

func applyBatchOperation(doc *models.GraphDocument, op BatchOperation, now time.Time) (*models.GraphDocument, any, error) {
	switch op.Type {
	case OpCreateEntity:
		var data EntityInput
		if err := json.Unmarshal(op.Data, &data); err != nil {
			return nil, nil, NewValidationError("bad create_entity payload: %v", err)
		}
		updated, touched, err := CreateEntities(doc, []EntityInput{data}, op.UserID, now)
		if err != nil {
			return nil, nil, err
		}
		return updated, touched[0], nil

	case OpCreateRelation:
		var data RelationInput
		if err := json.Unmarshal(op.Data, &data); err != nil {
			return nil, nil, NewValidationError("bad create_relation payload: %v", err)
		}
		updated, created, err := CreateRelations(doc, []RelationInput{data}, op.UserID, now)
		if err != nil {
			return nil, nil, err
		}
		if len(created) == 0 {
			// Duplicate triple: the create was silently ignored, which is
			// a success with nothing new to report.
			return updated, map[string]any{"created": false}, nil
		}
		return updated, created[0], nil

	case OpUpdateEntity:
		var data BatchUpdateEntityData
		if err := json.Unmarshal(op.Data, &data); err != nil {
			return nil, nil, NewValidationError("bad update_entity payload: %v", err)
		}
		updated, entity, err := UpdateEntity(doc, data.EntityName, data.Observations, data.Metadata, op.UserID, now)
		if err != nil {
			return nil, nil, err
		}
		return updated, entity, nil

	case OpDeleteEntity:
		var data BatchDeleteEntityData
		if err := json.Unmarshal(op.Data, &data); err != nil {
			return nil, nil, NewValidationError("bad delete_entity payload: %v", err)
		}
		updated, err := DeleteEntity(doc, data.EntityName)
		if err != nil {
			return nil, nil, err
		}
		return updated, map[string]any{"deleted": data.EntityName}, nil

	default:
		return nil, nil, NewValidationError("unknown operation type %q", op.Type)
	}
}
