package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ad/fsub-archive-bot/internal/config"
	"github.com/ad/fsub-archive-bot/internal/domain"
	"github.com/ad/fsub-archive-bot/internal/locale"
	"github.com/ad/fsub-archive-bot/internal/storage"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	_ "modernc.org/sqlite"
)

const (
	testOwnerID   int64 = 100
	testArchiveID int64 = -1001234567890
	testBotID     int64 = 42
	testBotName         = "archive_bot"
)

// capturingLogger implements domain.Logger and captures log entries
type capturingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level   string
	message string
	fields  map[string]interface{}
}

func (l *capturingLogger) Debug(msg string, args ...interface{}) { l.capture("DEBUG", msg, args...) }
func (l *capturingLogger) Info(msg string, args ...interface{})  { l.capture("INFO", msg, args...) }
func (l *capturingLogger) Warn(msg string, args ...interface{})  { l.capture("WARN", msg, args...) }
func (l *capturingLogger) Error(msg string, args ...interface{}) { l.capture("ERROR", msg, args...) }

func (l *capturingLogger) capture(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make(map[string]interface{})
	for i := 0; i < len(args)-1; i += 2 {
		fields[fmt.Sprintf("%v", args[i])] = args[i+1]
	}
	l.entries = append(l.entries, logEntry{level: level, message: msg, fields: fields})
}

func (l *capturingLogger) has(level, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.message == message {
			return true
		}
	}
	return false
}

// recordingAPI is a TelegramAPI that records every call
type recordingAPI struct {
	mu sync.Mutex

	nextID    int
	sent      []*bot.SendMessageParams
	edits     []*bot.EditMessageTextParams
	deletes   []*bot.DeleteMessageParams
	copies    []*bot.CopyMessageParams
	answers   []*bot.AnswerCallbackQueryParams
	documents []*bot.SendDocumentParams
	commands  []*bot.SetMyCommandsParams

	chats   map[int64]*models.ChatFullInfo
	members map[int64]models.ChatMemberType

	copyFunc func(params *bot.CopyMessageParams) (*models.MessageID, error)
}

var _ TelegramAPI = (*recordingAPI)(nil)

func newRecordingAPI() *recordingAPI {
	return &recordingAPI{
		nextID:  1000,
		chats:   make(map[int64]*models.ChatFullInfo),
		members: make(map[int64]models.ChatMemberType),
	}
}

func chatIDOf(v any) int64 {
	switch id := v.(type) {
	case int64:
		return id
	case int:
		return int64(id)
	default:
		return 0
	}
}

func (a *recordingAPI) id() int {
	a.nextID++
	return a.nextID
}

func (a *recordingAPI) GetMe(ctx context.Context) (*models.User, error) {
	return &models.User{ID: testBotID, Username: testBotName, FirstName: "Archive", IsBot: true}, nil
}

func (a *recordingAPI) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, params)
	return &models.Message{ID: a.id(), Chat: models.Chat{ID: chatIDOf(params.ChatID)}, Text: params.Text}, nil
}

func (a *recordingAPI) EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edits = append(a.edits, params)
	return &models.Message{ID: params.MessageID, Chat: models.Chat{ID: chatIDOf(params.ChatID)}, Text: params.Text}, nil
}

func (a *recordingAPI) DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deletes = append(a.deletes, params)
	return true, nil
}

func (a *recordingAPI) CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error) {
	a.mu.Lock()
	a.copies = append(a.copies, params)
	copyFunc := a.copyFunc
	id := a.id()
	a.mu.Unlock()

	if copyFunc != nil {
		return copyFunc(params)
	}
	return &models.MessageID{ID: id}, nil
}

func (a *recordingAPI) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.answers = append(a.answers, params)
	return true, nil
}

func (a *recordingAPI) SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.documents = append(a.documents, params)
	return &models.Message{ID: a.id()}, nil
}

func (a *recordingAPI) GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	info, ok := a.chats[chatIDOf(params.ChatID)]
	if !ok {
		return nil, errors.New("Bad Request: chat not found")
	}
	return info, nil
}

func (a *recordingAPI) GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	status, ok := a.members[chatIDOf(params.ChatID)]
	if !ok {
		status = models.ChatMemberTypeLeft
	}
	return &models.ChatMember{Type: status}, nil
}

func (a *recordingAPI) SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commands = append(a.commands, params)
	return true, nil
}

func (a *recordingAPI) sentTexts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	texts := make([]string, 0, len(a.sent))
	for _, p := range a.sent {
		texts = append(texts, p.Text)
	}
	return texts
}

func (a *recordingAPI) lastSent() *bot.SendMessageParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.sent) == 0 {
		return nil
	}
	return a.sent[len(a.sent)-1]
}

func (a *recordingAPI) lastEditText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.edits) == 0 {
		return ""
	}
	return a.edits[len(a.edits)-1].Text
}

func (a *recordingAPI) copyCalls() []*bot.CopyMessageParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*bot.CopyMessageParams{}, a.copies...)
}

func (a *recordingAPI) deletedIDs() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]int, 0, len(a.deletes))
	for _, p := range a.deletes {
		ids = append(ids, p.MessageID)
	}
	return ids
}

func (a *recordingAPI) answerCalls() []*bot.AnswerCallbackQueryParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*bot.AnswerCallbackQueryParams{}, a.answers...)
}

func (a *recordingAPI) sentContaining(part string) bool {
	for _, text := range a.sentTexts() {
		if strings.Contains(text, part) {
			return true
		}
	}
	return false
}

// fixture wires a BotHandler to real services over an in-memory database
type fixture struct {
	api        *recordingAPI
	logger     *capturingLogger
	cfg        *config.Config
	settings   *domain.SettingsService
	registry   *domain.RequiredChatsRegistry
	broadcast  *domain.BroadcastCoordinator
	addressing *domain.ArchiveAddressing
	links      *domain.DeepLinkService
	users      *storage.UserRepository
	prompts    *PromptRegistry
	handler    *BotHandler

	msgID int
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)

	queue := storage.NewDBQueue(db)
	t.Cleanup(func() {
		queue.Close()
		_ = db.Close()
	})
	if err := storage.InitSchema(queue); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	if err := storage.RunMigrations(queue); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	store := storage.NewDocumentStore(queue)

	f := &fixture{
		api:    newRecordingAPI(),
		logger: &capturingLogger{},
		cfg: &config.Config{
			OwnerID:        testOwnerID,
			DatabaseChatID: testArchiveID,
			OwnerUsername:  "owner",
			PromptTimeout:  5 * time.Second,
		},
		users:   storage.NewUserRepository(store, testBotID),
		prompts: NewPromptRegistry(),
		msgID:   1,
	}

	f.settings = domain.NewSettingsService(
		storage.NewAdminRepository(store, testBotID),
		storage.NewSettingsRepository(store, testBotID),
		testOwnerID, f.logger,
	)
	if err := f.settings.Init(ctx); err != nil {
		t.Fatalf("Failed to init settings: %v", err)
	}

	f.registry = domain.NewRequiredChatsRegistry(storage.NewRequiredChatRepository(store, testBotID), f.api, f.logger, nil)
	gate := domain.NewMembershipGate(f.registry, f.api, f.settings, f.logger, nil)

	localizer, err := locale.NewLocalizer(locale.En)
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	f.broadcast = domain.NewBroadcastCoordinator(
		f.api, f.users, storage.NewCheckpointRepository(store, testBotID), f.settings, f.settings,
		NewBroadcastView(localizer), f.logger, nil,
		domain.BroadcastConfig{ProgressEvery: 1, Sleep: noSleep},
	)

	f.addressing, err = domain.NewArchiveAddressing(testArchiveID)
	if err != nil {
		t.Fatalf("Failed to create addressing: %v", err)
	}
	f.links = domain.NewDeepLinkService(testBotName, f.addressing)

	me, _ := f.api.GetMe(ctx)
	f.handler = NewBotHandler(
		f.api, f.settings, f.registry, gate, f.broadcast, f.addressing, f.links,
		f.users, f.prompts, f.cfg, me, f.logger, nil, localizer,
	)
	f.handler.sleep = noSleep
	return f
}

// message builds a private message from userID
func (f *fixture) message(userID int64, text string) *models.Message {
	f.msgID++
	return &models.Message{
		ID:   f.msgID,
		From: &models.User{ID: userID, FirstName: "Ann"},
		Chat: models.Chat{ID: userID, Type: models.ChatTypePrivate},
		Text: text,
	}
}

func (f *fixture) send(msg *models.Message) {
	f.handler.HandleMessage(context.Background(), nil, &models.Update{Message: msg})
}

func (f *fixture) say(userID int64, text string) *models.Message {
	msg := f.message(userID, text)
	f.send(msg)
	return msg
}

// press simulates userID pressing a button with data under msg
func (f *fixture) press(userID int64, msg *models.Message, data string) {
	f.handler.HandleCallback(context.Background(), nil, &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:      fmt.Sprintf("cb-%d", msg.ID),
			From:    models.User{ID: userID},
			Message: models.MaybeInaccessibleMessage{Message: msg},
			Data:    data,
		},
	})
}

// addRequiredChat registers a resolvable required chat
func (f *fixture) addRequiredChat(t *testing.T, chatID int64, chatType models.ChatType) {
	t.Helper()
	f.api.mu.Lock()
	f.api.chats[chatID] = &models.ChatFullInfo{
		ID:         chatID,
		Type:       chatType,
		InviteLink: fmt.Sprintf("https://t.me/+invite%d", -chatID),
	}
	f.api.mu.Unlock()

	set, err := f.registry.Add(context.Background(), chatID)
	if err != nil || !set.Contains(chatID) {
		t.Fatalf("Failed to add required chat %d: %v", chatID, err)
	}
}

func (f *fixture) setMember(chatID int64, status models.ChatMemberType) {
	f.api.mu.Lock()
	defer f.api.mu.Unlock()
	f.api.members[chatID] = status
}
