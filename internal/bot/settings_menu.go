package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/ad/fsub-archive-bot/internal/locale"

	"github.com/go-telegram/bot/models"
)

func (h *BotHandler) boolLabel(v bool) string {
	if v {
		return h.localizer.MustLocalize(locale.BoolTrue)
	}
	return h.localizer.MustLocalize(locale.BoolFalse)
}

// idList renders numbered ids, or the empty marker
func (h *BotHandler) idList(title string, ids []int64) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	if len(ids) == 0 {
		sb.WriteString(h.localizer.MustLocalize(locale.SettingsListEmpty))
		return sb.String()
	}
	for i, id := range ids {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(h.localizer.MustLocalizeWithTemplate(locale.SettingsListItem, strconv.Itoa(i+1), strconv.FormatInt(id, 10)))
	}
	return sb.String()
}

// menuText renders the body of a settings page from the current state
func (h *BotHandler) menuText(kind MenuKind) string {
	switch kind {
	case MenuGenerate:
		return h.localizer.MustLocalizeWithTemplate(locale.SettingsGenerateStatus, h.boolLabel(h.settings.GenerateMode()))
	case MenuProtect:
		return h.localizer.MustLocalizeWithTemplate(locale.SettingsProtectStatus, h.boolLabel(h.settings.ProtectContent()))
	case MenuStart:
		return h.localizer.MustLocalizeWithTemplate(locale.SettingsStartText, h.settings.StartText())
	case MenuForce:
		return h.localizer.MustLocalizeWithTemplate(locale.SettingsForceText, h.settings.ForceText())
	case MenuAdmins:
		return h.idList(h.localizer.MustLocalize(locale.SettingsAdminsTitle), h.settings.ExtraAdmins())
	case MenuChats:
		return h.idList(h.localizer.MustLocalize(locale.SettingsChatsTitle), h.registry.Snapshot().IDs())
	default:
		return h.localizer.MustLocalize(locale.SettingsTitle)
	}
}

// showMenu replaces msg with a settings page
func (h *BotHandler) showMenu(ctx context.Context, msg *models.Message, kind MenuKind) {
	if _, ok := menuLayouts[kind]; !ok {
		h.logger.Debug("unknown menu page", "page", kind)
		return
	}
	h.edit(ctx, msg, h.menuText(kind), h.menuKeyboard(kind))
}

// toggleSetting flips the generate or protect flag and reports the new value
func (h *BotHandler) toggleSetting(ctx context.Context, msg *models.Message, what string) {
	var (
		enabled bool
		err     error
		key     string
		page    MenuKind
	)
	switch MenuKind(what) {
	case MenuGenerate:
		enabled, err = h.settings.ToggleGenerateMode(ctx)
		key, page = locale.SettingsGenerateChanged, MenuGenerate
	case MenuProtect:
		enabled, err = h.settings.ToggleProtectContent(ctx)
		key, page = locale.SettingsProtectChanged, MenuProtect
	default:
		h.logger.Debug("unknown setting toggle", "setting", what)
		return
	}

	if err != nil {
		h.logger.Error("failed to toggle setting", "setting", what, "error", err)
		h.edit(ctx, msg, h.localizer.MustLocalize(locale.ErrorGeneric), h.backKeyboard(page))
		return
	}

	h.logger.Info("setting toggled", "setting", what, "enabled", enabled)
	h.edit(ctx, msg, h.localizer.MustLocalizeWithTemplate(key, h.boolLabel(enabled)), h.backKeyboard(page))
}
