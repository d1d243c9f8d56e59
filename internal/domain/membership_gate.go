package domain

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ad/fsub-archive-bot/internal/metrics"
)

// ChatMemberGetter resolves a user's membership in a chat
type ChatMemberGetter interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// AdminChecker reports whether a user bypasses the gate
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// SnapshotSource provides the current required chat set
type SnapshotSource interface {
	Snapshot() RequiredChatSet
}

// MembershipGate decides whether a user may receive archive content
type MembershipGate struct {
	chats   SnapshotSource
	members ChatMemberGetter
	admins  AdminChecker
	logger  Logger
	metrics *metrics.Metrics
}

// NewMembershipGate creates a new MembershipGate
func NewMembershipGate(chats SnapshotSource, members ChatMemberGetter, admins AdminChecker, logger Logger, m *metrics.Metrics) *MembershipGate {
	return &MembershipGate{
		chats:   chats,
		members: members,
		admins:  admins,
		logger:  logger,
		metrics: m,
	}
}

// Pending returns the required chats userID has not joined, in registry
// order. gated is false when no chats are required or the user is an
// admin; missing is nil then. Every call performs fresh lookups and any
// lookup failure counts as not joined.
func (g *MembershipGate) Pending(ctx context.Context, userID int64) (missing []int64, gated bool) {
	snapshot := g.chats.Snapshot()
	if snapshot.Len() == 0 || g.admins.IsAdmin(userID) {
		g.metrics.GateChecked("exempt")
		return nil, false
	}

	missing = make([]int64, 0, snapshot.Len())
	for _, chatID := range snapshot.IDs() {
		member, err := g.members.GetChatMember(ctx, &bot.GetChatMemberParams{
			ChatID: chatID,
			UserID: userID,
		})
		if err != nil {
			g.logger.Debug("membership lookup failed", "chat_id", chatID, "user_id", userID, "error", err)
			missing = append(missing, chatID)
			continue
		}
		if !IsJoined(member) {
			missing = append(missing, chatID)
		}
	}

	if len(missing) > 0 {
		g.metrics.GateChecked("blocked")
	} else {
		g.metrics.GateChecked("passed")
	}
	return missing, true
}

// IsJoined reports whether a membership status grants access
func IsJoined(member *models.ChatMember) bool {
	if member == nil {
		return false
	}
	switch member.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return true
	case models.ChatMemberTypeRestricted:
		return member.Restricted != nil && member.Restricted.IsMember
	default:
		return false
	}
}
