package domain

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// CheckArchiveWritable verifies that botID may post to the archive chat.
// Only the chat owner or an administrator with the post right qualifies.
func CheckArchiveWritable(ctx context.Context, members ChatMemberGetter, archiveChatID, botID int64) error {
	member, err := members.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: archiveChatID,
		UserID: botID,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveNotWritable, err)
	}

	switch member.Type {
	case models.ChatMemberTypeOwner:
		return nil
	case models.ChatMemberTypeAdministrator:
		if member.Administrator != nil && member.Administrator.CanPostMessages {
			return nil
		}
		return fmt.Errorf("%w: missing post messages right", ErrArchiveNotWritable)
	default:
		return fmt.Errorf("%w: status %s", ErrArchiveNotWritable, member.Type)
	}
}
