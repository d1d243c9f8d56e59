package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// UserRepository handles bot user storage
type UserRepository struct {
	doc botDocument
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store *DocumentStore, botID int64) *UserRepository {
	return &UserRepository{doc: newBotDocument(store, botID)}
}

// AddUser registers userID and reports whether it was new
func (r *UserRepository) AddUser(ctx context.Context, userID int64) (bool, error) {
	return r.doc.store.AddValue(ctx, r.doc.docID, FieldUsers, userID)
}

// DeleteUser forgets userID
func (r *UserRepository) DeleteUser(ctx context.Context, userID int64) error {
	_, err := r.doc.store.DelValue(ctx, r.doc.docID, FieldUsers, userID)
	return err
}

// ListUsers returns every registered user in registration order
func (r *UserRepository) ListUsers(ctx context.Context) ([]int64, error) {
	values, err := r.doc.store.Values(ctx, r.doc.docID, FieldUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]int64, 0, len(values))
	for _, raw := range values {
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil {
			continue
		}
		users = append(users, id)
	}
	return users, nil
}

// CountUsers returns the number of registered users
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	return r.doc.store.CountValues(ctx, r.doc.docID, FieldUsers)
}
