package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ad/fsub-archive-bot/internal/locale"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const sinceLayout = "January 02, 2006 at 03:04 PM"

// handleUsers reports how many users started the bot
func (h *BotHandler) handleUsers(ctx context.Context, msg *models.Message) {
	counting, err := h.reply(ctx, msg, h.localizer.MustLocalize(locale.UsersCounting), nil)
	if err != nil {
		return
	}

	all, err := h.users.ListUsers(ctx)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.edit(ctx, counting, h.localizer.MustLocalize(locale.ErrorGeneric), nil)
		return
	}

	regular := 0
	for _, id := range all {
		if !h.isAdmin(id) {
			regular++
		}
	}

	h.edit(ctx, counting, h.localizer.MustLocalizeWithTemplate(locale.UsersStats,
		humanize.Comma(int64(regular)),
		humanize.Comma(int64(len(h.settings.Admins()))),
		humanize.Comma(int64(len(all))),
	), nil)
}

// unitSpan is one step of the uptime breakdown
type unitSpan struct {
	size     time.Duration
	singular string
	plural   string
}

var uptimeUnits = []unitSpan{
	{7 * 24 * time.Hour, locale.UnitWeek, locale.UnitWeeks},
	{24 * time.Hour, locale.UnitDay, locale.UnitDays},
	{time.Hour, locale.UnitHour, locale.UnitHours},
	{time.Minute, locale.UnitMinute, locale.UnitMinutes},
	{time.Second, locale.UnitSecond, locale.UnitSeconds},
}

// formatUptime renders the two largest non-zero units of d
func (h *BotHandler) formatUptime(d time.Duration) string {
	parts := make([]string, 0, 2)
	for _, u := range uptimeUnits {
		n := int64(d / u.size)
		d -= time.Duration(n) * u.size
		if n == 0 {
			continue
		}
		key := u.plural
		if n == 1 {
			key = u.singular
		}
		parts = append(parts, h.localizer.MustLocalizeWithTemplate(key, strconv.FormatInt(n, 10)))
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		return h.localizer.MustLocalizeWithTemplate(locale.UnitSeconds, "0")
	}
	return strings.Join(parts, ", ")
}

func (h *BotHandler) uptimeText() string {
	return h.localizer.MustLocalizeWithTemplate(locale.UptimeText,
		h.startedAt.Format(sinceLayout),
		h.formatUptime(h.now().Sub(h.startedAt)),
	)
}

func (h *BotHandler) handleUptime(ctx context.Context, msg *models.Message) {
	h.reply(ctx, msg, h.uptimeText(), h.refreshKeyboard(dataUptime))
}

func (h *BotHandler) refreshUptime(ctx context.Context, msg *models.Message) {
	h.edit(ctx, msg, h.localizer.MustLocalize(locale.Refreshing), nil)
	h.edit(ctx, msg, h.uptimeText(), h.refreshKeyboard(dataUptime))
}

// pingText measures a Bot API round trip
func (h *BotHandler) pingText(ctx context.Context) string {
	started := h.now()
	if _, err := h.api.GetMe(ctx); err != nil {
		h.logger.Error("ping failed", "error", err)
		return h.localizer.MustLocalize(locale.ErrorGeneric)
	}
	ms := float64(h.now().Sub(started).Microseconds()) / 1000
	return h.localizer.MustLocalizeWithTemplate(locale.PingLatency, fmt.Sprintf("%.2f", ms))
}

func (h *BotHandler) handlePing(ctx context.Context, msg *models.Message) {
	h.reply(ctx, msg, h.pingText(ctx), h.refreshKeyboard(dataPing))
}

func (h *BotHandler) refreshPing(ctx context.Context, msg *models.Message) {
	h.edit(ctx, msg, h.localizer.MustLocalize(locale.Refreshing), nil)
	h.edit(ctx, msg, h.pingText(ctx), h.refreshKeyboard(dataPing))
}

// handleLog sends the log file to the owner
func (h *BotHandler) handleLog(ctx context.Context, msg *models.Message) {
	path := h.config.LogFile
	if path == "" {
		h.reply(ctx, msg, h.localizer.MustLocalize(locale.LogFileAbsent), nil)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.logger.Warn("log file unavailable", "path", path, "error", err)
		h.reply(ctx, msg, h.localizer.MustLocalize(locale.LogFileAbsent), nil)
		return
	}
	defer f.Close()

	_, err = h.api.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   msg.Chat.ID,
		Document: &models.InputFileUpload{Filename: filepath.Base(path), Data: f},
		ReplyParameters: &models.ReplyParameters{
			MessageID:                msg.ID,
			AllowSendingWithoutReply: true,
		},
	})
	if err != nil {
		h.logger.Error("failed to send log file", "path", path, "error", err)
		h.reply(ctx, msg, h.localizer.MustLocalize(locale.ErrorGeneric), nil)
	}
}
