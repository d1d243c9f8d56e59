package bot

import (
	"context"
	"strings"

	"github.com/ad/fsub-archive-bot/internal/domain"
	"github.com/ad/fsub-archive-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// maxFloodRetries bounds how often one copy waits out a flood limit
const maxFloodRetries = 3

// handleStart registers the user, then either greets them or delivers the
// archive content named by the start token
func (h *BotHandler) handleStart(ctx context.Context, msg *models.Message) {
	user := msg.From

	added, err := h.users.AddUser(ctx, user.ID)
	if err != nil {
		h.logger.Error("failed to register user", "user_id", user.ID, "error", err)
	} else if added {
		h.logger.Info("new user registered", "user_id", user.ID)
	}

	token := domain.StartParam(msg.Text)
	if token == "" {
		h.sendWelcome(ctx, msg)
		return
	}

	if missing, gated := h.gate.Pending(ctx, user.ID); gated && len(missing) > 0 {
		h.logger.Debug("delivery blocked by required chats", "user_id", user.ID, "missing", len(missing))
		text := domain.FormatUserText(h.settings.ForceText(), user)
		h.reply(ctx, msg, text, h.joinKeyboard(missing, token))
		return
	}

	ids, err := h.addressing.Resolve(token, domain.MaxRangeSize)
	if err != nil {
		h.logger.Debug("ignoring start token", "user_id", user.ID, "error", err)
		return
	}
	h.deliver(ctx, user.ID, ids)
}

func (h *BotHandler) sendWelcome(ctx context.Context, msg *models.Message) {
	user := msg.From
	text := domain.FormatUserText(h.settings.StartText(), user)

	var kb *models.InlineKeyboardMarkup
	if h.isAdmin(user.ID) {
		kb = h.adminStartKeyboard()
	} else if missing, gated := h.gate.Pending(ctx, user.ID); gated && len(missing) > 0 {
		kb = h.joinKeyboard(missing, "")
	}
	h.reply(ctx, msg, text, kb)
}

// deliver copies archive messages to chatID in order. Messages that cannot
// be copied are skipped.
func (h *BotHandler) deliver(ctx context.Context, chatID int64, ids []int) {
	protect := h.settings.ProtectContent()
	delivered := 0

	for _, id := range ids {
		err := h.withFloodRetry(ctx, func() error {
			_, err := h.api.CopyMessage(ctx, &bot.CopyMessageParams{
				ChatID:         chatID,
				FromChatID:     h.config.DatabaseChatID,
				MessageID:      id,
				ProtectContent: protect,
			})
			return err
		})
		if ctx.Err() != nil {
			return
		}

		h.metrics.Delivered(err == nil)
		if err != nil {
			h.logger.Debug("archive message not delivered", "chat_id", chatID, "message_id", id, "error", err)
			continue
		}
		delivered++
	}

	h.logger.Info("archive content delivered", "chat_id", chatID, "requested", len(ids), "delivered", delivered)
}

// withFloodRetry runs call again after each flood wait Telegram demands
func (h *BotHandler) withFloodRetry(ctx context.Context, call func() error) error {
	err := call()
	for attempt := 0; attempt < maxFloodRetries; attempt++ {
		wait, limited := domain.FloodWait(err)
		if !limited {
			return err
		}
		h.metrics.RateLimited()
		h.logger.Warn("flood wait", "wait", wait)
		if sleepErr := h.sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
		err = call()
	}
	return err
}

func (h *BotHandler) handlePrivacy(ctx context.Context, msg *models.Message) {
	name := strings.TrimSpace(h.me.FirstName)
	if name == "" {
		name = "@" + h.me.Username
	}
	h.reply(ctx, msg, h.localizer.MustLocalizeWithTemplate(locale.PrivacyPolicy, name), h.contactKeyboard())
}
