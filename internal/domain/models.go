package domain

import (
	"errors"

	"github.com/go-telegram/bot/models"
)

// Validation errors
var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrSelfRemoval        = errors.New("cannot remove yourself")
	ErrOwnerRemoval       = errors.New("cannot remove the owner")
	ErrEmptyText          = errors.New("text cannot be empty")
	ErrInvalidUserID      = errors.New("user ID must be set")
	ErrInvalidChatID      = errors.New("chat ID must be set")
	ErrWrongChatType      = errors.New("unsupported chat type")
	ErrNoInviteLink       = errors.New("chat has no invite link")
	ErrArchiveNotSet      = errors.New("archive chat ID must be non-zero")
	ErrArchiveNotWritable = errors.New("bot cannot post to the archive chat")
)

// ChatKind is the label a required chat is presented under
type ChatKind string

const (
	ChatKindGroup   ChatKind = "Group"
	ChatKindChannel ChatKind = "Channel"
)

// ChatKindOf maps a Telegram chat type to a ChatKind. Only groups and
// channels can be required chats.
func ChatKindOf(t models.ChatType) (ChatKind, bool) {
	switch t {
	case models.ChatTypeGroup, models.ChatTypeSupergroup:
		return ChatKindGroup, true
	case models.ChatTypeChannel:
		return ChatKindChannel, true
	default:
		return "", false
	}
}

// RequiredChat is a chat users must join before content is delivered
type RequiredChat struct {
	ChatID     int64
	Kind       ChatKind
	InviteLink string
}

// Validate validates the RequiredChat fields
func (c *RequiredChat) Validate() error {
	if c.ChatID == 0 {
		return ErrInvalidChatID
	}
	if c.Kind != ChatKindGroup && c.Kind != ChatKindChannel {
		return ErrWrongChatType
	}
	if c.InviteLink == "" {
		return ErrNoInviteLink
	}
	return nil
}

// RequiredChatSet is an immutable snapshot of the resolved required chats.
// The zero value is an empty set.
type RequiredChatSet struct {
	ids   []int64
	chats map[int64]RequiredChat
}

// NewRequiredChatSet builds a snapshot preserving the order of chats
func NewRequiredChatSet(chats []RequiredChat) RequiredChatSet {
	set := RequiredChatSet{
		ids:   make([]int64, 0, len(chats)),
		chats: make(map[int64]RequiredChat, len(chats)),
	}
	for _, c := range chats {
		if _, dup := set.chats[c.ChatID]; dup {
			continue
		}
		set.ids = append(set.ids, c.ChatID)
		set.chats[c.ChatID] = c
	}
	return set
}

// Len returns the number of chats in the set
func (s RequiredChatSet) Len() int {
	return len(s.ids)
}

// IDs returns chat IDs in registry order
func (s RequiredChatSet) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Chats returns the chats in registry order
func (s RequiredChatSet) Chats() []RequiredChat {
	out := make([]RequiredChat, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.chats[id])
	}
	return out
}

// Get returns the chat with the given ID
func (s RequiredChatSet) Get(chatID int64) (RequiredChat, bool) {
	c, ok := s.chats[chatID]
	return c, ok
}

// Contains reports whether chatID is in the set
func (s RequiredChatSet) Contains(chatID int64) bool {
	_, ok := s.chats[chatID]
	return ok
}

// Map returns a copy of the set keyed by chat ID
func (s RequiredChatSet) Map() map[int64]RequiredChat {
	out := make(map[int64]RequiredChat, len(s.chats))
	for id, c := range s.chats {
		out[id] = c
	}
	return out
}

// BroadcastCheckpoint marks a broadcast in flight: the chat that started it
// and the progress message inside that chat
type BroadcastCheckpoint struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// BroadcastStatus is a point-in-time view of the broadcast counters
type BroadcastStatus struct {
	RunID   string
	Running bool
	Sent    int
	Failed  int
	Total   int
}

// Done reports whether every user was attempted
func (s BroadcastStatus) Done() bool {
	return s.Sent+s.Failed == s.Total
}

// Settings holds the mutable bot preferences
type Settings struct {
	GenerateMode   bool
	ProtectContent bool
	StartText      string
	ForceText      string
}

// DefaultSettings returns the values written on first start
func DefaultSettings() Settings {
	return Settings{
		GenerateMode:   false,
		ProtectContent: false,
		StartText: "Hello, {mention}!\n" +
			"The bot is up and running. These bots can store messages in custom chats, " +
			"and users access them through the bot.",
		ForceText: "To view messages shared by bots, join first, then press the Try Again button.",
	}
}
