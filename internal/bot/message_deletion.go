package bot

import (
	"context"
	"strings"

	"github.com/ad/fsub-archive-bot/internal/domain"

	"github.com/go-telegram/bot"
)

// MessageDeleter is an interface for deleting messages (for testing)
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// deleteMessages attempts to delete multiple messages from a chat.
// Failures are logged and skipped; a flood wait is honored once per message.
func deleteMessages(ctx context.Context, b MessageDeleter, logger domain.Logger, chatID int64, messageIDs ...int) {
	for _, messageID := range messageIDs {
		if messageID == 0 {
			continue
		}
		if err := deleteMessageWithRetry(ctx, b, logger, chatID, messageID); err != nil {
			logger.Warn("message deletion failed",
				"chat_id", chatID,
				"message_id", messageID,
				"error", err.Error())
			continue
		}
		logger.Debug("message deleted successfully",
			"chat_id", chatID,
			"message_id", messageID)
	}
}

// deleteMessageWithRetry attempts to delete a single message with retry logic for rate limits
func deleteMessageWithRetry(ctx context.Context, b MessageDeleter, logger domain.Logger, chatID int64, messageID int) error {
	params := &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}

	_, err := b.DeleteMessage(ctx, params)
	if err == nil {
		return nil
	}

	if wait, limited := domain.RetryAfter(err); limited {
		logger.Info("rate limit hit, retrying",
			"chat_id", chatID,
			"message_id", messageID,
			"wait", wait)
		if sleepErr := domain.Sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
		_, err = b.DeleteMessage(ctx, params)
		return err
	}

	if isMessageGoneError(err) {
		logger.Info("message already gone or too old to delete",
			"chat_id", chatID,
			"message_id", messageID)
	}
	return err
}

// isMessageGoneError reports errors that retrying cannot fix
func isMessageGoneError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "message to delete not found") ||
		strings.Contains(errStr, "message can't be deleted") ||
		strings.Contains(errStr, "MESSAGE_ID_INVALID")
}
