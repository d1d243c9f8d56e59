package storage

import (
	"context"
	"fmt"
)

// RequiredChatRepository handles required chat id storage
type RequiredChatRepository struct {
	doc botDocument
}

// NewRequiredChatRepository creates a new RequiredChatRepository
func NewRequiredChatRepository(store *DocumentStore, botID int64) *RequiredChatRepository {
	return &RequiredChatRepository{doc: newBotDocument(store, botID)}
}

// ListRequiredChats returns the stored chat ids in insertion order
func (r *RequiredChatRepository) ListRequiredChats(ctx context.Context) ([]int64, error) {
	doc, err := r.doc.store.GetDoc(ctx, r.doc.docID)
	if err != nil {
		return nil, fmt.Errorf("list required chats: %w", err)
	}
	return doc.Int64s(FieldRequiredChats), nil
}

// AddRequiredChat stores chatID unless already present
func (r *RequiredChatRepository) AddRequiredChat(ctx context.Context, chatID int64) (bool, error) {
	return r.doc.store.AddValue(ctx, r.doc.docID, FieldRequiredChats, chatID)
}

// RemoveRequiredChat deletes chatID and reports whether it was stored
func (r *RequiredChatRepository) RemoveRequiredChat(ctx context.Context, chatID int64) (bool, error) {
	return r.doc.store.DelValue(ctx, r.doc.docID, FieldRequiredChats, chatID)
}
