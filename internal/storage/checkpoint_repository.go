package storage

import (
	"context"
	"fmt"

	"github.com/ad/fsub-archive-bot/internal/domain"
)

// CheckpointRepository handles the in-flight broadcast marker
type CheckpointRepository struct {
	doc botDocument
}

// NewCheckpointRepository creates a new CheckpointRepository
func NewCheckpointRepository(store *DocumentStore, botID int64) *CheckpointRepository {
	return &CheckpointRepository{doc: newBotDocument(store, botID)}
}

// SaveCheckpoint replaces any stored checkpoint with cp
func (r *CheckpointRepository) SaveCheckpoint(ctx context.Context, cp domain.BroadcastCheckpoint) error {
	return r.doc.store.SetValue(ctx, r.doc.docID, FieldCheckpoint, cp)
}

// LoadCheckpoint returns the stored checkpoint, or nil when none exists
func (r *CheckpointRepository) LoadCheckpoint(ctx context.Context) (*domain.BroadcastCheckpoint, error) {
	doc, err := r.doc.store.GetDoc(ctx, r.doc.docID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp domain.BroadcastCheckpoint
	ok, err := doc.First(FieldCheckpoint, &cp)
	if err != nil {
		return nil, err
	}
	if !ok || cp.ChatID == 0 || cp.MessageID == 0 {
		return nil, nil
	}
	return &cp, nil
}

// ClearCheckpoint removes the stored checkpoint
func (r *CheckpointRepository) ClearCheckpoint(ctx context.Context) error {
	return r.doc.store.ClearField(ctx, r.doc.docID, FieldCheckpoint)
}
