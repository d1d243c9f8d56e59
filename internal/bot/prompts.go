package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-telegram/bot/models"
)

var (
	ErrPromptTimeout   = errors.New("prompt timed out")
	ErrPromptCancelled = errors.New("prompt cancelled")
)

type promptKey struct {
	chatID int64
	userID int64
}

type promptWaiter struct {
	reply     chan *models.Message
	cancelled chan struct{}
	// done is closed once Ask stops receiving
	done chan struct{}
	once sync.Once
}

func (w *promptWaiter) cancel() {
	w.once.Do(func() { close(w.cancelled) })
}

// PromptRegistry hands the next message a user sends in a chat to the flow
// waiting for it. One wait per (chat, user); a new Ask replaces the old one.
type PromptRegistry struct {
	mu      sync.Mutex
	waiting map[promptKey]*promptWaiter
}

// NewPromptRegistry creates an empty registry
func NewPromptRegistry() *PromptRegistry {
	return &PromptRegistry{waiting: make(map[promptKey]*promptWaiter)}
}

// Ask blocks until Resolve delivers a message for (chatID, userID), the
// wait is cancelled, the timeout passes, or ctx is done.
func (r *PromptRegistry) Ask(ctx context.Context, chatID, userID int64, timeout time.Duration) (*models.Message, error) {
	key := promptKey{chatID: chatID, userID: userID}
	w := &promptWaiter{
		reply:     make(chan *models.Message),
		cancelled: make(chan struct{}),
		done:      make(chan struct{}),
	}

	r.mu.Lock()
	if previous := r.waiting[key]; previous != nil {
		previous.cancel()
	}
	r.waiting[key] = w
	r.mu.Unlock()

	defer r.release(key, w)
	defer close(w.done)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.reply:
		return msg, nil
	case <-w.cancelled:
		return nil, ErrPromptCancelled
	case <-timer.C:
		return nil, ErrPromptTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *PromptRegistry) release(key promptKey, w *promptWaiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiting[key] == w {
		delete(r.waiting, key)
	}
}

// Resolve passes msg to the flow waiting in its chat for its sender and
// reports whether that flow took it. A flow that already timed out or was
// cancelled does not take the message.
func (r *PromptRegistry) Resolve(msg *models.Message) bool {
	if msg == nil || msg.From == nil {
		return false
	}
	key := promptKey{chatID: msg.Chat.ID, userID: msg.From.ID}

	r.mu.Lock()
	w := r.waiting[key]
	if w != nil {
		delete(r.waiting, key)
	}
	r.mu.Unlock()

	if w == nil {
		return false
	}
	select {
	case w.reply <- msg:
		return true
	case <-w.done:
		return false
	}
}

// Cancel abandons the wait for (chatID, userID)
func (r *PromptRegistry) Cancel(chatID, userID int64) bool {
	key := promptKey{chatID: chatID, userID: userID}

	r.mu.Lock()
	w := r.waiting[key]
	delete(r.waiting, key)
	r.mu.Unlock()

	if w == nil {
		return false
	}
	w.cancel()
	return true
}

// Pending reports whether a flow waits for (chatID, userID)
func (r *PromptRegistry) Pending(chatID, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.waiting[promptKey{chatID: chatID, userID: userID}]
	return ok
}
