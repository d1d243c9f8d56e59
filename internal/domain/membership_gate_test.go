package domain

import (
	"context"
	"reflect"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type fixedSnapshot struct{ set RequiredChatSet }

func (f fixedSnapshot) Snapshot() RequiredChatSet { return f.set }

func requiredSet(ids ...int64) RequiredChatSet {
	chats := make([]RequiredChat, 0, len(ids))
	for _, id := range ids {
		chats = append(chats, RequiredChat{ChatID: id, Kind: ChatKindChannel, InviteLink: "https://t.me/+x"})
	}
	return NewRequiredChatSet(chats)
}

func TestMembershipGate_NoRequiredChats(t *testing.T) {
	api := &mockChatAPI{}
	gate := NewMembershipGate(fixedSnapshot{}, api, staticAdmins{}, &mockLogger{}, nil)

	missing, gated := gate.Pending(context.Background(), 77)
	if gated || missing != nil {
		t.Errorf("expected ungated, got gated=%v missing=%v", gated, missing)
	}
	if api.callCount() != 0 {
		t.Errorf("expected no lookups, got %d", api.callCount())
	}
}

func TestMembershipGate_AdminBypass(t *testing.T) {
	api := &mockChatAPI{}
	gate := NewMembershipGate(fixedSnapshot{requiredSet(-1001)}, api, staticAdmins{7: true}, &mockLogger{}, nil)

	missing, gated := gate.Pending(context.Background(), 7)
	if gated || missing != nil {
		t.Errorf("admin must not be gated, got gated=%v missing=%v", gated, missing)
	}
	if api.callCount() != 0 {
		t.Errorf("admin check must not hit Telegram, got %d calls", api.callCount())
	}
}

func TestMembershipGate_PendingInRegistryOrder(t *testing.T) {
	const user int64 = 77
	api := &mockChatAPI{members: map[[2]int64]*models.ChatMember{
		{-1001, user}: memberOf(models.ChatMemberTypeMember),
		{-1002, user}: memberOf(models.ChatMemberTypeLeft),
		{-1003, user}: memberOf(models.ChatMemberTypeBanned),
		// -1004 lookup fails
		{-1005, user}: memberOf(models.ChatMemberTypeAdministrator),
	}}
	gate := NewMembershipGate(fixedSnapshot{requiredSet(-1001, -1002, -1003, -1004, -1005)}, api, staticAdmins{}, &mockLogger{}, nil)

	missing, gated := gate.Pending(context.Background(), user)
	if !gated {
		t.Fatal("expected gated")
	}
	if want := []int64{-1002, -1003, -1004}; !reflect.DeepEqual(missing, want) {
		t.Errorf("expected %v, got %v", want, missing)
	}
	if api.callCount() != 5 {
		t.Errorf("expected one lookup per chat, got %d", api.callCount())
	}
}

func TestMembershipGate_AllJoined(t *testing.T) {
	const user int64 = 77
	api := &mockChatAPI{members: map[[2]int64]*models.ChatMember{
		{-1001, user}: memberOf(models.ChatMemberTypeOwner),
		{-1002, user}: {Type: models.ChatMemberTypeRestricted, Restricted: &models.ChatMemberRestricted{IsMember: true}},
	}}
	gate := NewMembershipGate(fixedSnapshot{requiredSet(-1001, -1002)}, api, staticAdmins{}, &mockLogger{}, nil)

	missing, gated := gate.Pending(context.Background(), user)
	if !gated || len(missing) != 0 {
		t.Errorf("expected gated with nothing missing, got gated=%v missing=%v", gated, missing)
	}
}

func TestMembershipGate_FreshLookupEveryCall(t *testing.T) {
	const user int64 = 77
	api := &mockChatAPI{members: map[[2]int64]*models.ChatMember{
		{-1001, user}: memberOf(models.ChatMemberTypeLeft),
	}}
	gate := NewMembershipGate(fixedSnapshot{requiredSet(-1001)}, api, staticAdmins{}, &mockLogger{}, nil)

	if missing, _ := gate.Pending(context.Background(), user); len(missing) != 1 {
		t.Fatalf("expected user to be missing the chat, got %v", missing)
	}

	api.mu.Lock()
	api.members[[2]int64{-1001, user}] = memberOf(models.ChatMemberTypeMember)
	api.mu.Unlock()

	if missing, _ := gate.Pending(context.Background(), user); len(missing) != 0 {
		t.Errorf("joining must be seen on the next check, got %v", missing)
	}
}

func TestIsJoined(t *testing.T) {
	tests := []struct {
		name   string
		member *models.ChatMember
		want   bool
	}{
		{"nil", nil, false},
		{"owner", memberOf(models.ChatMemberTypeOwner), true},
		{"administrator", memberOf(models.ChatMemberTypeAdministrator), true},
		{"member", memberOf(models.ChatMemberTypeMember), true},
		{"left", memberOf(models.ChatMemberTypeLeft), false},
		{"banned", memberOf(models.ChatMemberTypeBanned), false},
		{"restricted member", &models.ChatMember{Type: models.ChatMemberTypeRestricted, Restricted: &models.ChatMemberRestricted{IsMember: true}}, true},
		{"restricted outsider", &models.ChatMember{Type: models.ChatMemberTypeRestricted, Restricted: &models.ChatMemberRestricted{IsMember: false}}, false},
		{"restricted without details", memberOf(models.ChatMemberTypeRestricted), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsJoined(tt.member); got != tt.want {
				t.Errorf("IsJoined = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestMembershipGate_MissingIsSubsequence checks that pending chats are
// always a subsequence of the registry in the same order
func TestMembershipGate_MissingIsSubsequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	const user int64 = 77

	properties.Property("pending chats keep registry order", prop.ForAll(
		func(joined []bool) bool {
			ids := make([]int64, len(joined))
			members := make(map[[2]int64]*models.ChatMember, len(joined))
			for i, j := range joined {
				ids[i] = int64(-1000 - i)
				if j {
					members[[2]int64{ids[i], user}] = memberOf(models.ChatMemberTypeMember)
				} else {
					members[[2]int64{ids[i], user}] = memberOf(models.ChatMemberTypeLeft)
				}
			}
			api := &mockChatAPI{members: members}
			gate := NewMembershipGate(fixedSnapshot{requiredSet(ids...)}, api, staticAdmins{}, &mockLogger{}, nil)

			missing, gated := gate.Pending(context.Background(), user)
			if len(ids) == 0 {
				return !gated
			}

			want := make([]int64, 0)
			for i, j := range joined {
				if !j {
					want = append(want, ids[i])
				}
			}
			return gated && reflect.DeepEqual(missing, want)
		},
		gen.SliceOfN(8, gen.Bool()),
	))

	properties.TestingRun(t)
}
