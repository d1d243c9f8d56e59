package bot

import (
	"context"
	"strings"
	"time"

	"github.com/ad/fsub-archive-bot/internal/config"
	"github.com/ad/fsub-archive-bot/internal/domain"
	"github.com/ad/fsub-archive-bot/internal/locale"
	"github.com/ad/fsub-archive-bot/internal/metrics"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// BotHandler handles all Telegram bot interactions
type BotHandler struct {
	api        TelegramAPI
	settings   *domain.SettingsService
	registry   *domain.RequiredChatsRegistry
	gate       *domain.MembershipGate
	broadcast  *domain.BroadcastCoordinator
	addressing *domain.ArchiveAddressing
	links      *domain.DeepLinkService
	users      domain.UserRepository
	prompts    *PromptRegistry
	config     *config.Config
	me         *models.User
	logger     domain.Logger
	metrics    *metrics.Metrics
	localizer  locale.Localizer

	startedAt time.Time
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewBotHandler creates a new BotHandler with all dependencies
func NewBotHandler(
	api TelegramAPI,
	settings *domain.SettingsService,
	registry *domain.RequiredChatsRegistry,
	gate *domain.MembershipGate,
	broadcast *domain.BroadcastCoordinator,
	addressing *domain.ArchiveAddressing,
	links *domain.DeepLinkService,
	users domain.UserRepository,
	prompts *PromptRegistry,
	cfg *config.Config,
	me *models.User,
	logger domain.Logger,
	m *metrics.Metrics,
	localizer locale.Localizer,
) *BotHandler {
	return &BotHandler{
		api:        api,
		settings:   settings,
		registry:   registry,
		gate:       gate,
		broadcast:  broadcast,
		addressing: addressing,
		links:      links,
		users:      users,
		prompts:    prompts,
		config:     cfg,
		me:         me,
		logger:     logger,
		metrics:    m,
		localizer:  localizer,
		startedAt:  time.Now(),
		now:        time.Now,
		sleep:      domain.Sleep,
	}
}

// isAdmin checks if a user is the owner or a stored admin
func (h *BotHandler) isAdmin(userID int64) bool {
	return h.settings.IsAdmin(userID)
}

// parseCommand extracts the command name from a message text. ok is false
// for plain text; name is empty when the command addresses another bot.
func parseCommand(text, botUsername string) (name string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}

	name = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		target := name[at+1:]
		name = name[:at]
		if !strings.EqualFold(target, botUsername) {
			return "", true
		}
	}
	return strings.ToLower(name), name != ""
}

// HandleMessage routes private messages: commands first, then a pending
// prompt of the sender, then generate mode for admins
func (h *BotHandler) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat.Type != models.ChatTypePrivate {
		return
	}

	if name, isCommand := parseCommand(msg.Text, h.me.Username); isCommand {
		h.handleCommand(ctx, msg, name)
		return
	}

	if h.prompts.Resolve(msg) {
		return
	}

	if h.isAdmin(msg.From.ID) && h.settings.GenerateMode() {
		h.generateLink(ctx, msg)
	}
}

func (h *BotHandler) handleCommand(ctx context.Context, msg *models.Message, name string) {
	userID := msg.From.ID

	switch name {
	case "start":
		h.handleStart(ctx, msg)
	case "privacy":
		h.handlePrivacy(ctx, msg)
	case "ping":
		h.handlePing(ctx, msg)
	case "uptime":
		h.handleUptime(ctx, msg)
	case "log":
		if userID != h.config.OwnerID {
			return
		}
		h.handleLog(ctx, msg)
	case "users", "batch", "broadcast", "bc", "stop":
		if !h.isAdmin(userID) {
			h.logger.Warn("unauthorized admin command attempt", "user_id", userID, "command", name)
			return
		}
		switch name {
		case "users":
			h.handleUsers(ctx, msg)
		case "batch":
			go h.runBatch(ctx, msg)
		case "broadcast", "bc":
			h.handleBroadcast(ctx, msg)
		case "stop":
			h.handleStop(ctx, msg)
		}
	default:
		h.logger.Debug("unknown command", "user_id", userID, "command", name)
	}
}

// HandleCallback routes inline keyboard presses
func (h *BotHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	callback := update.CallbackQuery
	msg := callback.Message.Message
	if msg == nil {
		h.answer(ctx, callback.ID, "")
		return
	}

	action, arg, _ := strings.Cut(callback.Data, " ")

	switch action {
	case "ping":
		h.answer(ctx, callback.ID, "")
		h.refreshPing(ctx, msg)
		return
	case "uptime":
		h.answer(ctx, callback.ID, "")
		h.refreshUptime(ctx, msg)
		return
	case "broadcast":
		h.answer(ctx, callback.ID, "")
		h.refreshBroadcast(ctx, msg)
		return
	}

	if !h.isAdmin(callback.From.ID) {
		h.logger.Warn("unauthorized callback", "user_id", callback.From.ID, "data", callback.Data)
		h.answerAlert(ctx, callback.ID, h.localizer.MustLocalize(locale.CallbackNotAuthorized))
		return
	}

	h.answer(ctx, callback.ID, "")

	switch action {
	case "settings":
		h.showMenu(ctx, msg, MenuSettings)
	case "menu":
		h.showMenu(ctx, msg, MenuKind(arg))
	case "close":
		deleteMessages(ctx, h.api, h.logger, msg.Chat.ID, msg.ID)
		if msg.ReplyToMessage != nil {
			deleteMessages(ctx, h.api, h.logger, msg.Chat.ID, msg.ReplyToMessage.ID)
		}
	case "cancel":
		h.prompts.Cancel(msg.Chat.ID, callback.From.ID)
	case "change":
		h.toggleSetting(ctx, msg, arg)
	case "update":
		go h.runTextUpdate(ctx, msg, callback.From.ID, arg)
	case "add":
		go h.runAddEntry(ctx, msg, callback.From.ID, arg)
	case "del":
		go h.runDeleteEntry(ctx, msg, callback.From.ID, arg)
	default:
		h.logger.Debug("unknown callback", "user_id", callback.From.ID, "data", callback.Data)
	}
}

func (h *BotHandler) answer(ctx context.Context, callbackID, text string) {
	if _, err := h.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		h.logger.Debug("failed to answer callback", "error", err)
	}
}

func (h *BotHandler) answerAlert(ctx context.Context, callbackID, text string) {
	if _, err := h.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	}); err != nil {
		h.logger.Debug("failed to answer callback", "error", err)
	}
}

// reply sends an HTML message quoting msg
func (h *BotHandler) reply(ctx context.Context, msg *models.Message, text string, kb *models.InlineKeyboardMarkup) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID:             msg.Chat.ID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: noPreview(),
		ReplyParameters: &models.ReplyParameters{
			MessageID:                msg.ID,
			AllowSendingWithoutReply: true,
		},
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	sent, err := h.api.SendMessage(ctx, params)
	if err != nil {
		h.logger.Error("failed to send message", "chat_id", msg.Chat.ID, "error", err)
		return nil, err
	}
	return sent, nil
}

// edit rewrites a message in place
func (h *BotHandler) edit(ctx context.Context, msg *models.Message, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.EditMessageTextParams{
		ChatID:             msg.Chat.ID,
		MessageID:          msg.ID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: noPreview(),
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := h.api.EditMessageText(ctx, params); err != nil {
		h.logger.Warn("failed to edit message", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
	}
}

func noPreview() *models.LinkPreviewOptions {
	disabled := true
	return &models.LinkPreviewOptions{IsDisabled: &disabled}
}
