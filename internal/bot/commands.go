package bot

import (
	"context"
	"strconv"

	"github.com/ad/fsub-archive-bot/internal/domain"
	"github.com/ad/fsub-archive-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// botCommands lists the commands shown in the client menu
func botCommands(localizer locale.Localizer) []models.BotCommand {
	entries := []struct{ name, key string }{
		{"start", locale.CommandStart},
		{"privacy", locale.CommandPrivacy},
		{"ping", locale.CommandPing},
		{"uptime", locale.CommandUptime},
		{"users", locale.CommandUsers},
		{"batch", locale.CommandBatch},
		{"broadcast", locale.CommandBroadcast},
		{"stop", locale.CommandStop},
		{"log", locale.CommandLog},
	}

	commands := make([]models.BotCommand, 0, len(entries))
	for _, e := range entries {
		commands = append(commands, models.BotCommand{Command: e.name, Description: localizer.MustLocalize(e.key)})
	}
	return commands
}

// SetupCommands publishes the command menu
func (h *BotHandler) SetupCommands(ctx context.Context) error {
	_, err := h.api.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: botCommands(h.localizer)})
	return err
}

// NotifyStartup tells the owner the bot is up. cp is the broadcast that
// was interrupted by the previous shutdown, if any.
func (h *BotHandler) NotifyStartup(ctx context.Context, cp *domain.BroadcastCheckpoint) {
	chatID, messageID := "-", "-"
	if cp != nil {
		chatID = strconv.FormatInt(cp.ChatID, 10)
		messageID = strconv.Itoa(cp.MessageID)
	}

	_, err := h.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    h.config.OwnerID,
		Text:      h.localizer.MustLocalizeWithTemplate(locale.StartupNotice, chatID, messageID),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		h.logger.Warn("failed to notify owner about startup", "owner_id", h.config.OwnerID, "error", err)
	}
}
