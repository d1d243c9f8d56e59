package storage

import (
	"context"
	"fmt"
)

// AdminRepository handles bot admin data operations
type AdminRepository struct {
	doc botDocument
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(store *DocumentStore, botID int64) *AdminRepository {
	return &AdminRepository{doc: newBotDocument(store, botID)}
}

// ListAdmins returns stored admin ids in insertion order
func (r *AdminRepository) ListAdmins(ctx context.Context) ([]int64, error) {
	doc, err := r.doc.store.GetDoc(ctx, r.doc.docID)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return doc.Int64s(FieldAdmins), nil
}

// AddAdmin stores userID; adding an existing admin is a no-op
func (r *AdminRepository) AddAdmin(ctx context.Context, userID int64) (bool, error) {
	return r.doc.store.AddValue(ctx, r.doc.docID, FieldAdmins, userID)
}

// RemoveAdmin deletes userID and reports whether it was stored
func (r *AdminRepository) RemoveAdmin(ctx context.Context, userID int64) (bool, error) {
	return r.doc.store.DelValue(ctx, r.doc.docID, FieldAdmins, userID)
}
