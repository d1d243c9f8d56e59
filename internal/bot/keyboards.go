package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ad/fsub-archive-bot/internal/domain"
	"github.com/ad/fsub-archive-bot/internal/locale"

	"github.com/go-telegram/bot/models"
)

// MenuKind names one page of the settings menu
type MenuKind string

const (
	MenuSettings MenuKind = "settings"
	MenuGenerate MenuKind = "generate"
	MenuStart    MenuKind = "start"
	MenuForce    MenuKind = "force"
	MenuProtect  MenuKind = "protect"
	MenuAdmins   MenuKind = "admins"
	MenuChats    MenuKind = "fsubs"
)

// Callback data understood by HandleCallback
const (
	dataSettings     = "settings"
	dataClose        = "close"
	dataCancel       = "cancel"
	dataPing         = "ping"
	dataUptime       = "uptime"
	dataBroadcast    = "broadcast"
	dataMenuPrefix   = "menu "
	dataChangePrefix = "change "
	dataUpdatePrefix = "update "
	dataAddPrefix    = "add "
	dataDelPrefix    = "del "
)

// Entry kinds of the add/del flows
const (
	entryAdmin = "admin"
	entryChat  = "f-sub"
)

// buttonDef is a callback button before localization
type buttonDef struct {
	label string
	data  string
}

func back(to MenuKind) buttonDef {
	if to == MenuSettings {
		return buttonDef{locale.ButtonBack, dataSettings}
	}
	return buttonDef{locale.ButtonBack, dataMenuPrefix + string(to)}
}

// menuLayouts is the button grid of every settings page
var menuLayouts = map[MenuKind][][]buttonDef{
	MenuSettings: {
		{{locale.ButtonGenerateStatus, dataMenuPrefix + string(MenuGenerate)}},
		{{locale.ButtonStartText, dataMenuPrefix + string(MenuStart)}, {locale.ButtonForceText, dataMenuPrefix + string(MenuForce)}},
		{{locale.ButtonProtectContent, dataMenuPrefix + string(MenuProtect)}},
		{{locale.ButtonAdmins, dataMenuPrefix + string(MenuAdmins)}, {locale.ButtonRequiredChats, dataMenuPrefix + string(MenuChats)}},
		{{locale.ButtonClose, dataClose}},
	},
	MenuGenerate: {
		{back(MenuSettings), {locale.ButtonChange, dataChangePrefix + string(MenuGenerate)}},
	},
	MenuProtect: {
		{back(MenuSettings), {locale.ButtonChange, dataChangePrefix + string(MenuProtect)}},
	},
	MenuStart: {
		{back(MenuSettings), {locale.ButtonSet, dataUpdatePrefix + string(MenuStart)}},
	},
	MenuForce: {
		{back(MenuSettings), {locale.ButtonSet, dataUpdatePrefix + string(MenuForce)}},
	},
	MenuAdmins: {
		{{locale.ButtonAdd, dataAddPrefix + entryAdmin}, {locale.ButtonDelete, dataDelPrefix + entryAdmin}},
		{back(MenuSettings)},
	},
	MenuChats: {
		{{locale.ButtonAdd, dataAddPrefix + entryChat}, {locale.ButtonDelete, dataDelPrefix + entryChat}},
		{back(MenuSettings)},
	},
}

// validateLayouts checks that every menu link points at a known page
func validateLayouts() error {
	for kind, rows := range menuLayouts {
		if len(rows) == 0 {
			return fmt.Errorf("menu %q has no buttons", kind)
		}
		for _, row := range rows {
			for _, b := range row {
				if b.label == "" || b.data == "" {
					return fmt.Errorf("menu %q has an empty button", kind)
				}
				if target, ok := strings.CutPrefix(b.data, dataMenuPrefix); ok {
					if _, known := menuLayouts[MenuKind(target)]; !known {
						return fmt.Errorf("menu %q links to unknown page %q", kind, target)
					}
				}
			}
		}
	}
	return nil
}

func (h *BotHandler) button(label, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: h.localizer.MustLocalize(label), CallbackData: data}
}

func (h *BotHandler) urlButton(label, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: h.localizer.MustLocalize(label), URL: url}
}

func markup(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// chunk splits buttons into rows of size
func chunk(buttons []models.InlineKeyboardButton, size int) [][]models.InlineKeyboardButton {
	var rows [][]models.InlineKeyboardButton
	for len(buttons) > size {
		rows = append(rows, buttons[:size:size])
		buttons = buttons[size:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}

// menuKeyboard renders the layout of a settings page
func (h *BotHandler) menuKeyboard(kind MenuKind) *models.InlineKeyboardMarkup {
	layout, ok := menuLayouts[kind]
	if !ok {
		return nil
	}
	rows := make([][]models.InlineKeyboardButton, 0, len(layout))
	for _, specs := range layout {
		row := make([]models.InlineKeyboardButton, 0, len(specs))
		for _, s := range specs {
			row = append(row, h.button(s.label, s.data))
		}
		rows = append(rows, row)
	}
	return markup(rows...)
}

func (h *BotHandler) backKeyboard(to MenuKind) *models.InlineKeyboardMarkup {
	b := back(to)
	return markup([]models.InlineKeyboardButton{h.button(b.label, b.data)})
}

func (h *BotHandler) cancelKeyboard() *models.InlineKeyboardMarkup {
	return markup([]models.InlineKeyboardButton{h.button(locale.ButtonCancel, dataCancel)})
}

func (h *BotHandler) refreshKeyboard(data string) *models.InlineKeyboardMarkup {
	return markup([]models.InlineKeyboardButton{h.button(locale.ButtonRefresh, data)})
}

func (h *BotHandler) closeKeyboard() *models.InlineKeyboardMarkup {
	return markup([]models.InlineKeyboardButton{h.button(locale.ButtonClose, dataClose)})
}

func (h *BotHandler) contactKeyboard() *models.InlineKeyboardMarkup {
	url := fmt.Sprintf("https://t.me/%s/5", h.config.OwnerUsername)
	return markup([]models.InlineKeyboardButton{h.urlButton(locale.ButtonContact, url)})
}

func (h *BotHandler) shareKeyboard(link string) *models.InlineKeyboardMarkup {
	return markup([]models.InlineKeyboardButton{h.urlButton(locale.ButtonShare, h.links.ShareURL(link))})
}

// archiveKeyboard opens the archive chat in the Telegram client
func (h *BotHandler) archiveKeyboard() *models.InlineKeyboardMarkup {
	id := strconv.FormatInt(h.config.DatabaseChatID, 10)
	id = strings.TrimPrefix(strings.TrimPrefix(id, "-100"), "-")
	return markup([]models.InlineKeyboardButton{h.urlButton(locale.ButtonArchiveChannel, "tg://openmessage?chat_id="+id)})
}

func (h *BotHandler) kindLabel(kind domain.ChatKind) string {
	if kind == domain.ChatKindChannel {
		return h.localizer.MustLocalize(locale.ChatKindChannelLabel)
	}
	return h.localizer.MustLocalize(locale.ChatKindGroupLabel)
}

// joinKeyboard lists invite links of the chats a user still has to join,
// two per row. With a start token a Try Again button repeats the request.
func (h *BotHandler) joinKeyboard(missing []int64, token string) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(missing))
	for _, chatID := range missing {
		chat, ok := h.registry.Get(chatID)
		if !ok {
			continue
		}
		buttons = append(buttons, models.InlineKeyboardButton{
			Text: h.localizer.MustLocalizeWithTemplate(locale.ButtonJoinChat, h.kindLabel(chat.Kind)),
			URL:  chat.InviteLink,
		})
	}

	rows := chunk(buttons, 2)
	if token != "" {
		rows = append(rows, []models.InlineKeyboardButton{h.urlButton(locale.ButtonTryAgain, h.links.StartURL(token))})
	}
	if len(rows) == 0 {
		return nil
	}
	return markup(rows...)
}

// adminStartKeyboard shows every required chat, three per row, and the
// settings entry
func (h *BotHandler) adminStartKeyboard() *models.InlineKeyboardMarkup {
	chats := h.registry.Snapshot().Chats()
	buttons := make([]models.InlineKeyboardButton, 0, len(chats))
	for _, chat := range chats {
		buttons = append(buttons, models.InlineKeyboardButton{Text: h.kindLabel(chat.Kind), URL: chat.InviteLink})
	}

	rows := chunk(buttons, 3)
	rows = append(rows, []models.InlineKeyboardButton{h.button(locale.ButtonBotSettings, dataSettings)})
	return markup(rows...)
}
