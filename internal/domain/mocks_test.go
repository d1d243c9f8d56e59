package domain

import (
	"context"
	"errors"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...interface{}) {}
func (m *mockLogger) Info(msg string, args ...interface{})  {}
func (m *mockLogger) Warn(msg string, args ...interface{})  {}
func (m *mockLogger) Error(msg string, args ...interface{}) {}

// memSet is an ordered set of ids shared by the in-memory repositories
type memSet struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (s *memSet) list() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

func (s *memSet) add(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.ids {
		if v == id {
			return false, nil
		}
	}
	s.ids = append(s.ids, id)
	return true, nil
}

func (s *memSet) remove(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memAdminRepo struct{ memSet }

func (r *memAdminRepo) ListAdmins(ctx context.Context) ([]int64, error) { return r.list() }
func (r *memAdminRepo) AddAdmin(ctx context.Context, id int64) (bool, error) {
	return r.add(id)
}
func (r *memAdminRepo) RemoveAdmin(ctx context.Context, id int64) (bool, error) {
	return r.remove(id)
}

type memRequiredChatRepo struct{ memSet }

func (r *memRequiredChatRepo) ListRequiredChats(ctx context.Context) ([]int64, error) {
	return r.list()
}
func (r *memRequiredChatRepo) AddRequiredChat(ctx context.Context, id int64) (bool, error) {
	return r.add(id)
}
func (r *memRequiredChatRepo) RemoveRequiredChat(ctx context.Context, id int64) (bool, error) {
	return r.remove(id)
}

type memUserRepo struct{ memSet }

func (r *memUserRepo) AddUser(ctx context.Context, id int64) (bool, error) { return r.add(id) }
func (r *memUserRepo) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.remove(id)
	return err
}
func (r *memUserRepo) ListUsers(ctx context.Context) ([]int64, error) { return r.list() }
func (r *memUserRepo) CountUsers(ctx context.Context) (int, error) {
	ids, err := r.list()
	return len(ids), err
}

type memSettingsRepo struct {
	mu       sync.Mutex
	settings Settings
	written  map[string]bool
}

func (r *memSettingsRepo) LoadSettings(ctx context.Context) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings, nil
}

func (r *memSettingsRepo) EnsureDefaults(ctx context.Context, defaults Settings) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.written == nil {
		r.written = make(map[string]bool)
	}
	var initialized []string
	if !r.written["start"] {
		r.settings.StartText = defaults.StartText
		r.written["start"] = true
		initialized = append(initialized, "START_TEXT")
	}
	if !r.written["force"] {
		r.settings.ForceText = defaults.ForceText
		r.written["force"] = true
		initialized = append(initialized, "FORCE_TEXT")
	}
	return initialized, nil
}

func (r *memSettingsRepo) SetGenerateMode(ctx context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.GenerateMode = enabled
	return nil
}

func (r *memSettingsRepo) SetProtectContent(ctx context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.ProtectContent = enabled
	return nil
}

func (r *memSettingsRepo) SetStartText(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.StartText = text
	return nil
}

func (r *memSettingsRepo) SetForceText(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.ForceText = text
	return nil
}

type memCheckpointRepo struct {
	mu    sync.Mutex
	cp    *BroadcastCheckpoint
	saved []BroadcastCheckpoint
}

func (r *memCheckpointRepo) SaveCheckpoint(ctx context.Context, cp BroadcastCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cp = &cp
	r.saved = append(r.saved, cp)
	return nil
}

func (r *memCheckpointRepo) LoadCheckpoint(ctx context.Context) (*BroadcastCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cp == nil {
		return nil, nil
	}
	cp := *r.cp
	return &cp, nil
}

func (r *memCheckpointRepo) ClearCheckpoint(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cp = nil
	return nil
}

func (r *memCheckpointRepo) current() *BroadcastCheckpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cp
}

// mockChatAPI answers GetChat and GetChatMember from tables
type mockChatAPI struct {
	mu      sync.Mutex
	chats   map[int64]*models.ChatFullInfo
	members map[[2]int64]*models.ChatMember
	calls   int
}

var errChatNotFound = errors.New("Bad Request: chat not found")

func (m *mockChatAPI) GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	chat, ok := m.chats[params.ChatID.(int64)]
	if !ok {
		return nil, errChatNotFound
	}
	return chat, nil
}

func (m *mockChatAPI) GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	member, ok := m.members[[2]int64{params.ChatID.(int64), params.UserID}]
	if !ok {
		return nil, errors.New("Bad Request: user not found")
	}
	return member, nil
}

func (m *mockChatAPI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func memberOf(t models.ChatMemberType) *models.ChatMember {
	return &models.ChatMember{Type: t}
}

// staticAdmins is an AdminChecker over a fixed set
type staticAdmins map[int64]bool

func (a staticAdmins) IsAdmin(userID int64) bool { return a[userID] }

type staticContent struct{ protect bool }

func (c staticContent) ProtectContent() bool { return c.protect }

// recordingMessenger records outgoing calls and delegates copies to copyFunc
type recordingMessenger struct {
	mu       sync.Mutex
	nextID   int
	sent     []*bot.SendMessageParams
	edits    []*bot.EditMessageTextParams
	deletes  []*bot.DeleteMessageParams
	copies   []*bot.CopyMessageParams
	copyFunc func(params *bot.CopyMessageParams) error
}

func (m *recordingMessenger) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.sent = append(m.sent, params)
	return &models.Message{ID: 1000 + m.nextID}, nil
}

func (m *recordingMessenger) EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, params)
	return &models.Message{ID: params.MessageID}, nil
}

func (m *recordingMessenger) DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, params)
	return true, nil
}

func (m *recordingMessenger) CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error) {
	m.mu.Lock()
	m.copies = append(m.copies, params)
	fn := m.copyFunc
	m.mu.Unlock()

	if fn != nil {
		if err := fn(params); err != nil {
			return nil, err
		}
	}
	return &models.MessageID{ID: 1}, nil
}

func (m *recordingMessenger) sentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, p := range m.sent {
		out = append(out, p.Text)
	}
	return out
}

func (m *recordingMessenger) copyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.copies)
}

// textView renders plain markers so tests can match on them
type textView struct{}

func (textView) Started() (string, *models.InlineKeyboardMarkup) { return "started", nil }
func (textView) Running(s BroadcastStatus) (string, *models.InlineKeyboardMarkup) {
	return "running", nil
}
func (textView) Progress(s BroadcastStatus) (string, *models.InlineKeyboardMarkup) {
	return "progress", nil
}
func (textView) Result(s BroadcastStatus) (string, *models.InlineKeyboardMarkup) {
	if s.Done() {
		return "finished", nil
	}
	return "stopped", nil
}
func (textView) Interrupted() string { return "interrupted" }
