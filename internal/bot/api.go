package bot

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramAPI is the part of the Bot API the handlers call. *bot.Bot
// implements it; tests substitute a recorder.
type TelegramAPI interface {
	GetMe(ctx context.Context) (*models.User, error)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

var _ TelegramAPI = (*bot.Bot)(nil)
