package storage

import (
	"github.com/ad/fsub-archive-bot/internal/domain"
)

// Field names of the bot document
const (
	FieldAdmins         = "BOT_ADMINS"
	FieldRequiredChats  = "FSUB_CHATS"
	FieldUsers          = "BOT_USERS"
	FieldGenerateMode   = "GENERATE_URL"
	FieldProtectContent = "PROTECT_CONTENT"
	FieldForceText      = "FORCE_TEXT"
	FieldStartText      = "START_TEXT"
	FieldCheckpoint     = "RESTART_IDS"
	FieldArchiveChat    = "DATABASE_CHAT_ID"
)

var (
	_ domain.AdminRepository        = (*AdminRepository)(nil)
	_ domain.RequiredChatRepository = (*RequiredChatRepository)(nil)
	_ domain.UserRepository         = (*UserRepository)(nil)
	_ domain.SettingsRepository     = (*SettingsRepository)(nil)
	_ domain.CheckpointRepository   = (*CheckpointRepository)(nil)
)

// botDocument addresses the single document owned by one bot identity
type botDocument struct {
	store *DocumentStore
	docID string
}

func newBotDocument(store *DocumentStore, botID int64) botDocument {
	return botDocument{store: store, docID: DocID(botID)}
}
