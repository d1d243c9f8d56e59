package bot

import (
	"context"
	"errors"

	"github.com/ad/fsub-archive-bot/internal/domain"
	"github.com/ad/fsub-archive-bot/internal/locale"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot/models"
)

// BroadcastView renders broadcast messages through the localizer
type BroadcastView struct {
	localizer locale.Localizer
}

var _ domain.BroadcastView = (*BroadcastView)(nil)

// NewBroadcastView creates a new BroadcastView
func NewBroadcastView(localizer locale.Localizer) *BroadcastView {
	return &BroadcastView{localizer: localizer}
}

func (v *BroadcastView) keyboard(label, data string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: v.localizer.MustLocalize(label), CallbackData: data}},
	}}
}

func (v *BroadcastView) counters(key string, status domain.BroadcastStatus) string {
	return v.localizer.MustLocalizeWithTemplate(key,
		humanize.Comma(int64(status.Sent)),
		humanize.Comma(int64(status.Total)),
		humanize.Comma(int64(status.Failed)),
	)
}

func (v *BroadcastView) Started() (string, *models.InlineKeyboardMarkup) {
	return v.localizer.MustLocalize(locale.BroadcastStarted), v.keyboard(locale.ButtonRefresh, dataBroadcast)
}

func (v *BroadcastView) Running(status domain.BroadcastStatus) (string, *models.InlineKeyboardMarkup) {
	return v.localizer.MustLocalize(locale.BroadcastAlreadyActive), v.keyboard(locale.ButtonRefresh, dataBroadcast)
}

func (v *BroadcastView) Progress(status domain.BroadcastStatus) (string, *models.InlineKeyboardMarkup) {
	return v.counters(locale.BroadcastProgress, status), v.keyboard(locale.ButtonRefresh, dataBroadcast)
}

func (v *BroadcastView) Result(status domain.BroadcastStatus) (string, *models.InlineKeyboardMarkup) {
	key := locale.BroadcastStopped
	if status.Done() {
		key = locale.BroadcastFinished
	}
	return v.counters(key, status), v.keyboard(locale.ButtonClose, dataClose)
}

func (v *BroadcastView) Interrupted() string {
	return v.localizer.MustLocalize(locale.ErrorGeneric)
}

// handleBroadcast starts a broadcast of the replied message. Without a
// reply it shows the running broadcast, if any.
func (h *BotHandler) handleBroadcast(ctx context.Context, msg *models.Message) {
	view := NewBroadcastView(h.localizer)

	if msg.ReplyToMessage == nil {
		if h.broadcast.Running() {
			text, kb := view.Progress(h.broadcast.Status())
			h.reply(ctx, msg, text, kb)
			return
		}
		h.reply(ctx, msg, h.localizer.MustLocalize(locale.BroadcastReplyRequired), nil)
		return
	}

	req := domain.BroadcastRequest{
		OriginChatID:     msg.Chat.ID,
		CommandMessageID: msg.ID,
		SourceChatID:     msg.Chat.ID,
		SourceMessageID:  msg.ReplyToMessage.ID,
	}
	h.logger.Info("broadcast requested", "user_id", msg.From.ID, "source_message_id", req.SourceMessageID)

	go func() {
		if _, err := h.broadcast.Start(ctx, req); err != nil && !errors.Is(err, domain.ErrBroadcastRunning) {
			h.logger.Error("broadcast failed", "user_id", msg.From.ID, "error", err)
		}
	}()
}

func (h *BotHandler) handleStop(ctx context.Context, msg *models.Message) {
	if !h.broadcast.Stop() {
		h.reply(ctx, msg, h.localizer.MustLocalize(locale.BroadcastNotRunning), nil)
		return
	}
	h.logger.Info("broadcast stop requested", "user_id", msg.From.ID)
	h.reply(ctx, msg, h.localizer.MustLocalize(locale.BroadcastStopAccepted), nil)
}

// refreshBroadcast rewrites a status message with the live counters
func (h *BotHandler) refreshBroadcast(ctx context.Context, msg *models.Message) {
	if !h.broadcast.Running() {
		h.edit(ctx, msg, h.localizer.MustLocalize(locale.BroadcastNotRunning), nil)
		return
	}
	if err := h.broadcast.RefreshProgress(ctx, msg.Chat.ID, msg.ID); err != nil {
		h.logger.Debug("broadcast refresh failed", "error", err)
	}
}
