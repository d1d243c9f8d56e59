package domain

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ad/fsub-archive-bot/internal/metrics"
)

// ChatInfoGetter resolves chat metadata
type ChatInfoGetter interface {
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
}

// RequiredChatsRegistry keeps the resolved set of required chats. Readers
// get an immutable snapshot; a refresh builds a new one and swaps it in.
type RequiredChatsRegistry struct {
	repo    RequiredChatRepository
	chats   ChatInfoGetter
	logger  Logger
	metrics *metrics.Metrics

	refreshMu sync.Mutex

	mu       sync.RWMutex
	snapshot RequiredChatSet
}

// NewRequiredChatsRegistry creates an empty registry. Call Refresh to load it.
func NewRequiredChatsRegistry(repo RequiredChatRepository, chats ChatInfoGetter, logger Logger, m *metrics.Metrics) *RequiredChatsRegistry {
	return &RequiredChatsRegistry{
		repo:    repo,
		chats:   chats,
		logger:  logger,
		metrics: m,
	}
}

// Snapshot returns the current set
func (r *RequiredChatsRegistry) Snapshot() RequiredChatSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Get returns one chat of the current set
func (r *RequiredChatsRegistry) Get(chatID int64) (RequiredChat, bool) {
	return r.Snapshot().Get(chatID)
}

// Contains reports whether chatID is in the current set
func (r *RequiredChatsRegistry) Contains(chatID int64) bool {
	return r.Snapshot().Contains(chatID)
}

// Refresh resolves every stored chat id. Chats that cannot be resolved, are
// not a group or channel, or have no invite link are deleted from storage.
// Only a storage read failure or context cancellation is returned; the
// previous snapshot is kept in that case.
func (r *RequiredChatsRegistry) Refresh(ctx context.Context) (RequiredChatSet, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	ids, err := r.repo.ListRequiredChats(ctx)
	if err != nil {
		return r.Snapshot(), fmt.Errorf("refresh required chats: %w", err)
	}

	resolved := make([]RequiredChat, 0, len(ids))
	for i, chatID := range ids {
		if err := ctx.Err(); err != nil {
			return r.Snapshot(), err
		}

		chat, reason := r.resolve(ctx, chatID)
		if reason != nil {
			// A lookup aborted by shutdown says nothing about the chat
			if ctx.Err() != nil {
				return r.Snapshot(), ctx.Err()
			}
			r.prune(ctx, i+1, chatID, reason)
			continue
		}

		resolved = append(resolved, chat)
		r.logger.Info("required chat loaded", "position", i+1, "chat_id", chatID, "kind", chat.Kind)
	}

	if len(ids) == 0 {
		r.logger.Info("no required chats configured")
	}

	set := NewRequiredChatSet(resolved)
	r.mu.Lock()
	r.snapshot = set
	r.mu.Unlock()

	r.metrics.RequiredChats(set.Len())
	return set, nil
}

func (r *RequiredChatsRegistry) resolve(ctx context.Context, chatID int64) (RequiredChat, error) {
	info, err := r.chats.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return RequiredChat{}, err
	}
	if info == nil {
		return RequiredChat{}, ErrNotFound
	}

	kind, ok := ChatKindOf(info.Type)
	if !ok {
		return RequiredChat{}, ErrWrongChatType
	}

	chat := RequiredChat{ChatID: chatID, Kind: kind, InviteLink: info.InviteLink}
	if err := chat.Validate(); err != nil {
		return RequiredChat{}, err
	}
	return chat, nil
}

func (r *RequiredChatsRegistry) prune(ctx context.Context, position int, chatID int64, reason error) {
	r.logger.Warn("required chat unavailable, removing", "position", position, "chat_id", chatID, "error", reason)
	if _, err := r.repo.RemoveRequiredChat(ctx, chatID); err != nil {
		r.logger.Error("failed to remove required chat", "chat_id", chatID, "error", err)
		return
	}
	r.metrics.ChatPruned()
}

// Add stores chatID and refreshes. Adding a stored id only refreshes.
func (r *RequiredChatsRegistry) Add(ctx context.Context, chatID int64) (RequiredChatSet, error) {
	if chatID == 0 {
		return r.Snapshot(), ErrInvalidChatID
	}
	if _, err := r.repo.AddRequiredChat(ctx, chatID); err != nil {
		return r.Snapshot(), fmt.Errorf("add required chat: %w", err)
	}
	return r.Refresh(ctx)
}

// Remove deletes chatID and refreshes
func (r *RequiredChatsRegistry) Remove(ctx context.Context, chatID int64) (RequiredChatSet, error) {
	if _, err := r.repo.RemoveRequiredChat(ctx, chatID); err != nil {
		return r.Snapshot(), fmt.Errorf("remove required chat: %w", err)
	}
	return r.Refresh(ctx)
}
