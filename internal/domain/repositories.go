package domain

import "context"

// Logger interface for logging
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// AdminRepository stores the extra bot admins. The owner is never stored.
type AdminRepository interface {
	ListAdmins(ctx context.Context) ([]int64, error)
	AddAdmin(ctx context.Context, userID int64) (bool, error)
	RemoveAdmin(ctx context.Context, userID int64) (bool, error)
}

// RequiredChatRepository stores the ids of required chats
type RequiredChatRepository interface {
	ListRequiredChats(ctx context.Context) ([]int64, error)
	AddRequiredChat(ctx context.Context, chatID int64) (bool, error)
	RemoveRequiredChat(ctx context.Context, chatID int64) (bool, error)
}

// UserRepository stores every user who ever started the bot
type UserRepository interface {
	AddUser(ctx context.Context, userID int64) (bool, error)
	DeleteUser(ctx context.Context, userID int64) error
	ListUsers(ctx context.Context) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)
}

// SettingsRepository stores the mutable preferences
type SettingsRepository interface {
	LoadSettings(ctx context.Context) (Settings, error)
	EnsureDefaults(ctx context.Context, defaults Settings) ([]string, error)
	SetGenerateMode(ctx context.Context, enabled bool) error
	SetProtectContent(ctx context.Context, enabled bool) error
	SetStartText(ctx context.Context, text string) error
	SetForceText(ctx context.Context, text string) error
}

// CheckpointRepository stores the in-flight broadcast marker
type CheckpointRepository interface {
	SaveCheckpoint(ctx context.Context, cp BroadcastCheckpoint) error
	LoadCheckpoint(ctx context.Context) (*BroadcastCheckpoint, error)
	ClearCheckpoint(ctx context.Context) error
}
