package bot

import (
	"context"
	"errors"

	"github.com/ad/fsub-archive-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// generateLink stores an admin's message in the archive and replies with
// its start link
func (h *BotHandler) generateLink(ctx context.Context, msg *models.Message) {
	var copied *models.MessageID
	err := h.withFloodRetry(ctx, func() error {
		var err error
		copied, err = h.api.CopyMessage(ctx, &bot.CopyMessageParams{
			ChatID:     h.config.DatabaseChatID,
			FromChatID: msg.Chat.ID,
			MessageID:  msg.ID,
		})
		return err
	})
	if err != nil || copied == nil {
		h.logger.Error("failed to archive message", "user_id", msg.From.ID, "message_id", msg.ID, "error", err)
		h.reply(ctx, msg, h.localizer.MustLocalize(locale.ErrorGeneric), nil)
		return
	}

	link := h.links.SingleLink(copied.ID)
	h.metrics.LinkIssued("single")
	h.logger.Info("link generated", "user_id", msg.From.ID, "archive_message_id", copied.ID)
	h.reply(ctx, msg, link, h.shareKeyboard(link))
}

// forwardedArchiveID returns the archive message id a forward points at
func (h *BotHandler) forwardedArchiveID(msg *models.Message) (int, bool) {
	if msg.ForwardOrigin == nil || msg.ForwardOrigin.Type != models.MessageOriginTypeChannel || msg.ForwardOrigin.MessageOriginChannel == nil {
		return 0, false
	}
	origin := msg.ForwardOrigin.MessageOriginChannel
	if origin.Chat.ID != h.config.DatabaseChatID || origin.MessageID <= 0 {
		return 0, false
	}
	return origin.MessageID, true
}

// askForward asks for a forward from the archive chat and returns the id
// of the forwarded archive message
func (h *BotHandler) askForward(ctx context.Context, cmd *models.Message, askKey string) (int, bool) {
	prompt, err := h.reply(ctx, cmd, h.localizer.MustLocalizeWithTemplate(askKey, h.timeoutLabel()), h.archiveKeyboard())
	if err != nil {
		return 0, false
	}
	defer deleteMessages(context.WithoutCancel(ctx), h.api, h.logger, cmd.Chat.ID, prompt.ID)

	answer, err := h.prompts.Ask(ctx, cmd.Chat.ID, cmd.From.ID, h.config.PromptTimeout)
	if errors.Is(err, ErrPromptTimeout) {
		h.reply(ctx, cmd, h.localizer.MustLocalize(locale.PromptTimedOut), nil)
		return 0, false
	}
	if err != nil {
		return 0, false
	}

	id, ok := h.forwardedArchiveID(answer)
	if !ok {
		h.reply(ctx, answer, h.localizer.MustLocalize(locale.BatchInvalidForward), nil)
		return 0, false
	}
	return id, true
}

// runBatch builds a link for a range of archive messages chosen by
// forwarding its first and last message
func (h *BotHandler) runBatch(ctx context.Context, cmd *models.Message) {
	first, ok := h.askForward(ctx, cmd, locale.BatchAskFirst)
	if !ok {
		return
	}
	last, ok := h.askForward(ctx, cmd, locale.BatchAskLast)
	if !ok {
		return
	}

	link := h.links.RangeLink(first, last)
	h.metrics.LinkIssued("range")
	h.logger.Info("batch link generated", "user_id", cmd.From.ID, "first", first, "last", last)
	h.reply(ctx, cmd, link, h.shareKeyboard(link))
}
