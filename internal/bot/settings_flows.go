package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ad/fsub-archive-bot/internal/domain"
	"github.com/ad/fsub-archive-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ask turns msg into a prompt with a Cancel button and waits for the
// admin's answer. On timeout or cancel msg shows the outcome and nil is
// returned. The answer message is removed from the chat.
func (h *BotHandler) ask(ctx context.Context, msg *models.Message, userID int64, prompt string, page MenuKind) *models.Message {
	h.edit(ctx, msg, prompt, h.cancelKeyboard())

	answer, err := h.prompts.Ask(ctx, msg.Chat.ID, userID, h.config.PromptTimeout)
	switch {
	case errors.Is(err, ErrPromptTimeout):
		h.logger.Debug("prompt timed out", "user_id", userID, "page", page)
		h.edit(ctx, msg, h.localizer.MustLocalize(locale.PromptTimedOut), h.backKeyboard(page))
		return nil
	case errors.Is(err, ErrPromptCancelled):
		h.edit(ctx, msg, h.localizer.MustLocalize(locale.PromptCancelled), h.backKeyboard(page))
		return nil
	case err != nil:
		return nil
	}

	deleteMessages(ctx, h.api, h.logger, answer.Chat.ID, answer.ID)
	return answer
}

func (h *BotHandler) timeoutLabel() string {
	return h.config.PromptTimeout.String()
}

// runTextUpdate asks for a new start or force text
func (h *BotHandler) runTextUpdate(ctx context.Context, msg *models.Message, userID int64, what string) {
	var askKey, doneKey string
	var set func(context.Context, string) error

	page := MenuKind(what)
	switch page {
	case MenuStart:
		askKey, doneKey, set = locale.PromptStartText, locale.SettingsStartTextUpdated, h.settings.SetStartText
	case MenuForce:
		askKey, doneKey, set = locale.PromptForceText, locale.SettingsForceTextUpdated, h.settings.SetForceText
	default:
		h.logger.Debug("unknown text setting", "setting", what)
		return
	}

	answer := h.ask(ctx, msg, userID, h.localizer.MustLocalizeWithTemplate(askKey, h.timeoutLabel()), page)
	if answer == nil {
		return
	}

	text := strings.TrimSpace(answer.Text)
	if text == "" {
		h.edit(ctx, msg, h.localizer.MustLocalize(locale.PromptTextRequired), h.backKeyboard(page))
		return
	}

	if err := set(ctx, text); err != nil {
		h.logger.Error("failed to update text setting", "setting", what, "user_id", userID, "error", err)
		h.edit(ctx, msg, h.localizer.MustLocalize(locale.ErrorGeneric), h.backKeyboard(page))
		return
	}

	h.logger.Info("text setting updated", "setting", what, "user_id", userID)
	h.edit(ctx, msg, h.localizer.MustLocalizeWithTemplate(doneKey, text), h.backKeyboard(page))
}

// entryFlow describes the add/del flows of one list page
type entryFlow struct {
	page      MenuKind
	entity    string
	addPrompt string
	delPrompt string
}

func entryFlowFor(what string) (entryFlow, bool) {
	switch what {
	case entryAdmin:
		return entryFlow{MenuAdmins, locale.SettingsEntityUserID, locale.PromptAddAdmin, locale.PromptDeleteAdmin}, true
	case entryChat:
		return entryFlow{MenuChats, locale.SettingsEntityChatID, locale.PromptAddChat, locale.PromptDeleteChat}, true
	default:
		return entryFlow{}, false
	}
}

// askID asks for a numeric id. ok is false when the flow already ended.
func (h *BotHandler) askID(ctx context.Context, msg *models.Message, userID int64, flow entryFlow, prompt string) (id int64, ok bool) {
	answer := h.ask(ctx, msg, userID, h.localizer.MustLocalizeWithTemplate(prompt, h.timeoutLabel()), flow.page)
	if answer == nil {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimSpace(answer.Text), 10, 64)
	if err != nil || id == 0 {
		entity := h.localizer.MustLocalize(flow.entity)
		h.edit(ctx, msg, h.localizer.MustLocalizeWithTemplate(locale.SettingsInvalidEntryID, entity), h.backKeyboard(flow.page))
		return 0, false
	}
	return id, true
}

// runAddEntry adds an admin or a required chat
func (h *BotHandler) runAddEntry(ctx context.Context, msg *models.Message, userID int64, what string) {
	flow, ok := entryFlowFor(what)
	if !ok {
		h.logger.Debug("unknown entry kind", "kind", what)
		return
	}
	id, ok := h.askID(ctx, msg, userID, flow, flow.addPrompt)
	if !ok {
		return
	}

	var text string
	if flow.page == MenuAdmins {
		text = h.addAdmin(ctx, id, flow)
	} else {
		text = h.addRequiredChat(ctx, id, flow)
	}
	h.edit(ctx, msg, text, h.backKeyboard(flow.page))
}

func (h *BotHandler) entityText(key string, flow entryFlow) string {
	return h.localizer.MustLocalizeWithTemplate(key, h.localizer.MustLocalize(flow.entity))
}

func (h *BotHandler) addAdmin(ctx context.Context, id int64, flow entryFlow) string {
	if h.isAdmin(id) {
		return h.entityText(locale.SettingsAlreadyAdded, flow)
	}

	info, err := h.api.GetChat(ctx, &bot.GetChatParams{ChatID: id})
	if err != nil || info == nil || info.Type != models.ChatTypePrivate {
		h.logger.Debug("admin candidate rejected", "user_id", id, "error", err)
		return h.entityText(locale.SettingsNotValid, flow)
	}

	switch err := h.settings.AddAdmin(ctx, id); {
	case errors.Is(err, domain.ErrAlreadyExists):
		return h.entityText(locale.SettingsAlreadyAdded, flow)
	case err != nil:
		h.logger.Error("failed to add admin", "user_id", id, "error", err)
		return h.localizer.MustLocalize(locale.ErrorGeneric)
	}
	return h.localizer.MustLocalizeWithTemplate(locale.SettingsAdminAdded, strconv.FormatInt(id, 10))
}

func (h *BotHandler) addRequiredChat(ctx context.Context, id int64, flow entryFlow) string {
	if h.registry.Contains(id) {
		return h.entityText(locale.SettingsAlreadyAdded, flow)
	}

	info, err := h.api.GetChat(ctx, &bot.GetChatParams{ChatID: id})
	if err != nil || info == nil {
		h.logger.Debug("required chat candidate rejected", "chat_id", id, "error", err)
		return h.entityText(locale.SettingsNotValid, flow)
	}
	if _, ok := domain.ChatKindOf(info.Type); !ok {
		return h.entityText(locale.SettingsNotValid, flow)
	}

	set, err := h.registry.Add(ctx, id)
	if err != nil {
		h.logger.Error("failed to add required chat", "chat_id", id, "error", err)
		return h.localizer.MustLocalize(locale.ErrorGeneric)
	}
	// The refresh drops chats the bot cannot invite to
	if !set.Contains(id) {
		return h.entityText(locale.SettingsNotValid, flow)
	}
	return h.localizer.MustLocalizeWithTemplate(locale.SettingsChatAdded, strconv.FormatInt(id, 10))
}

// runDeleteEntry removes an admin or a required chat
func (h *BotHandler) runDeleteEntry(ctx context.Context, msg *models.Message, userID int64, what string) {
	flow, ok := entryFlowFor(what)
	if !ok {
		h.logger.Debug("unknown entry kind", "kind", what)
		return
	}
	id, ok := h.askID(ctx, msg, userID, flow, flow.delPrompt)
	if !ok {
		return
	}

	var text string
	if flow.page == MenuAdmins {
		text = h.deleteAdmin(ctx, userID, id, flow)
	} else {
		text = h.deleteRequiredChat(ctx, id, flow)
	}
	h.edit(ctx, msg, text, h.backKeyboard(flow.page))
}

func (h *BotHandler) deleteAdmin(ctx context.Context, actorID, id int64, flow entryFlow) string {
	switch err := h.settings.RemoveAdmin(ctx, actorID, id); {
	case errors.Is(err, domain.ErrNotFound):
		return h.entityText(locale.SettingsNotFound, flow)
	case errors.Is(err, domain.ErrSelfRemoval):
		return h.localizer.MustLocalize(locale.SettingsNoRightsSelf)
	case errors.Is(err, domain.ErrOwnerRemoval):
		return h.localizer.MustLocalize(locale.SettingsNoRightsOwner)
	case err != nil:
		h.logger.Error("failed to remove admin", "user_id", id, "error", err)
		return h.localizer.MustLocalize(locale.ErrorGeneric)
	}
	return h.localizer.MustLocalizeWithTemplate(locale.SettingsAdminDeleted, strconv.FormatInt(id, 10))
}

func (h *BotHandler) deleteRequiredChat(ctx context.Context, id int64, flow entryFlow) string {
	if !h.registry.Contains(id) {
		return h.entityText(locale.SettingsNotFound, flow)
	}
	if _, err := h.registry.Remove(ctx, id); err != nil {
		h.logger.Error("failed to remove required chat", "chat_id", id, "error", err)
		return h.localizer.MustLocalize(locale.ErrorGeneric)
	}
	return h.localizer.MustLocalizeWithTemplate(locale.SettingsChatDeleted, strconv.FormatInt(id, 10))
}
