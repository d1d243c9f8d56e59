package domain

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ad/fsub-archive-bot/internal/metrics"
)

// DefaultProgressEvery is how many completed users pass between progress edits
const DefaultProgressEvery = 250

// ErrBroadcastRunning is returned by Start while another run is active
var ErrBroadcastRunning = errors.New("broadcast already running")

// BroadcastMessenger is the slice of the Bot API a broadcast needs
type BroadcastMessenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error)
}

// BroadcastView renders the texts shown to the admin running a broadcast
type BroadcastView interface {
	Started() (string, *models.InlineKeyboardMarkup)
	Running(status BroadcastStatus) (string, *models.InlineKeyboardMarkup)
	Progress(status BroadcastStatus) (string, *models.InlineKeyboardMarkup)
	Result(status BroadcastStatus) (string, *models.InlineKeyboardMarkup)
	Interrupted() string
}

// ContentSettings exposes the flags that shape delivered copies
type ContentSettings interface {
	ProtectContent() bool
}

// BroadcastRequest describes one broadcast: the admin command that started
// it and the message to copy to every user
type BroadcastRequest struct {
	OriginChatID     int64
	CommandMessageID int
	SourceChatID     int64
	SourceMessageID  int
}

// BroadcastConfig holds the optional knobs of a coordinator
type BroadcastConfig struct {
	ProgressEvery int
	// RatePerSecond caps outbound copies; 0 disables pacing
	RatePerSecond float64
	// Sleep replaces the flood-wait sleep, mostly for tests
	Sleep func(ctx context.Context, d time.Duration) error
}

// BroadcastCoordinator sends one message to every registered non-admin
// user. At most one broadcast runs at a time.
type BroadcastCoordinator struct {
	messenger   BroadcastMessenger
	users       UserRepository
	checkpoints CheckpointRepository
	admins      AdminChecker
	content     ContentSettings
	view        BroadcastView
	logger      Logger
	metrics     *metrics.Metrics

	progressEvery int
	limiter       *rate.Limiter
	sleep         func(ctx context.Context, d time.Duration) error

	mu            sync.Mutex
	active        bool
	stopRequested bool
	status        BroadcastStatus
}

// NewBroadcastCoordinator creates an idle coordinator
func NewBroadcastCoordinator(
	messenger BroadcastMessenger,
	users UserRepository,
	checkpoints CheckpointRepository,
	admins AdminChecker,
	content ContentSettings,
	view BroadcastView,
	logger Logger,
	m *metrics.Metrics,
	cfg BroadcastConfig,
) *BroadcastCoordinator {
	c := &BroadcastCoordinator{
		messenger:     messenger,
		users:         users,
		checkpoints:   checkpoints,
		admins:        admins,
		content:       content,
		view:          view,
		logger:        logger,
		metrics:       m,
		progressEvery: cfg.ProgressEvery,
		sleep:         cfg.Sleep,
	}
	if c.progressEvery <= 0 {
		c.progressEvery = DefaultProgressEvery
	}
	if c.sleep == nil {
		c.sleep = Sleep
	}
	if cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return c
}

// Status returns the current counters
func (c *BroadcastCoordinator) Status() BroadcastStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Running reports whether a broadcast is active
func (c *BroadcastCoordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Stop asks the active broadcast to stop before its next user. It reports
// false when nothing is running.
func (c *BroadcastCoordinator) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || c.stopRequested {
		return false
	}
	c.stopRequested = true
	c.status.Running = false
	return true
}

func (c *BroadcastCoordinator) shouldStop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopRequested
}

// Start runs a broadcast to completion and returns the final counters.
// When another broadcast is active it replies with that run's status and
// returns ErrBroadcastRunning without touching the counters.
func (c *BroadcastCoordinator) Start(ctx context.Context, req BroadcastRequest) (BroadcastStatus, error) {
	c.mu.Lock()
	if c.active {
		current := c.status
		c.mu.Unlock()

		text, markup := c.view.Running(current)
		c.reply(ctx, req.OriginChatID, req.CommandMessageID, text, markup)
		return current, ErrBroadcastRunning
	}
	c.active = true
	c.stopRequested = false
	c.status = BroadcastStatus{RunID: uuid.NewString(), Running: true}
	c.mu.Unlock()

	status, err := c.run(ctx, req)
	c.reset()
	return status, err
}

func (c *BroadcastCoordinator) run(ctx context.Context, req BroadcastRequest) (BroadcastStatus, error) {
	text, markup := c.view.Started()
	progress, err := c.reply(ctx, req.OriginChatID, req.CommandMessageID, text, markup)
	if err != nil {
		return c.Status(), err
	}
	progressID := 0
	if progress != nil {
		progressID = progress.ID
	}

	users, err := c.users.ListUsers(ctx)
	if err != nil {
		c.deleteMessage(ctx, req.OriginChatID, progressID)
		return c.Status(), err
	}
	targets := make([]int64, 0, len(users))
	for _, id := range users {
		if !c.admins.IsAdmin(id) {
			targets = append(targets, id)
		}
	}

	c.mu.Lock()
	c.status.Total = len(targets)
	runID := c.status.RunID
	c.mu.Unlock()

	c.logger.Info("broadcast starting", "run_id", runID, "total", len(targets))

	cp := BroadcastCheckpoint{ChatID: req.OriginChatID, MessageID: progressID}
	if err := c.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
		c.logger.Error("failed to save broadcast checkpoint", "run_id", runID, "error", err)
	}

	for i := 0; i < len(targets); {
		if c.shouldStop() {
			break
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				break
			}
		}

		userID := targets[i]
		_, err := c.messenger.CopyMessage(ctx, &bot.CopyMessageParams{
			ChatID:         userID,
			FromChatID:     req.SourceChatID,
			MessageID:      req.SourceMessageID,
			ProtectContent: c.content.ProtectContent(),
		})

		if ctx.Err() != nil {
			// Shutdown, not the user's fault
			break
		}
		if wait, limited := FloodWait(err); limited {
			c.logger.Warn("flood wait during broadcast", "run_id", runID, "user_id", userID, "wait", wait)
			c.metrics.RateLimited()
			if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
				break
			}
			continue
		}

		c.mu.Lock()
		if err != nil {
			c.status.Failed++
		} else {
			c.status.Sent++
		}
		completed := c.status.Sent + c.status.Failed
		snapshot := c.status
		c.mu.Unlock()

		if err != nil {
			c.logger.Debug("broadcast delivery failed, removing user", "user_id", userID, "error", err)
			if delErr := c.users.DeleteUser(ctx, userID); delErr != nil {
				c.logger.Error("failed to remove user", "user_id", userID, "error", delErr)
			}
		}
		c.metrics.BroadcastSent(err == nil)

		if completed%c.progressEvery == 0 {
			text, markup := c.view.Progress(snapshot)
			c.edit(ctx, req.OriginChatID, progressID, text, markup)
		}
		i++
	}

	return c.finalize(ctx, req, progressID), nil
}

func (c *BroadcastCoordinator) finalize(ctx context.Context, req BroadcastRequest, progressID int) BroadcastStatus {
	status := c.Status()
	status.Running = false

	// The run may have been cut short by shutdown; the report still goes out
	ctx = context.WithoutCancel(ctx)

	text, markup := c.view.Result(status)
	c.reply(ctx, req.OriginChatID, req.CommandMessageID, text, markup)

	outcome := "stopped"
	if status.Done() {
		outcome = "finished"
	}
	c.logger.Info("broadcast "+outcome, "run_id", status.RunID, "sent", status.Sent, "failed", status.Failed, "total", status.Total)
	c.metrics.BroadcastFinished(outcome)

	if err := c.checkpoints.ClearCheckpoint(ctx); err != nil {
		c.logger.Error("failed to clear broadcast checkpoint", "run_id", status.RunID, "error", err)
	}
	c.deleteMessage(ctx, req.OriginChatID, progressID)
	return status
}

func (c *BroadcastCoordinator) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.stopRequested = false
	c.status = BroadcastStatus{}
}

// RefreshProgress rewrites messageID with the current counters
func (c *BroadcastCoordinator) RefreshProgress(ctx context.Context, chatID int64, messageID int) error {
	text, markup := c.view.Progress(c.Status())
	return c.edit(ctx, chatID, messageID, text, markup)
}

// Recover handles a checkpoint left by a broadcast that never finished: the
// originating chat is told the run failed and the checkpoint is cleared.
// Interrupted broadcasts are not resumed.
func (c *BroadcastCoordinator) Recover(ctx context.Context) (*BroadcastCheckpoint, error) {
	cp, err := c.checkpoints.LoadCheckpoint(ctx)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, nil
	}

	c.logger.Warn("found interrupted broadcast", "chat_id", cp.ChatID, "message_id", cp.MessageID)
	if _, err := c.reply(ctx, cp.ChatID, cp.MessageID, c.view.Interrupted(), nil); err != nil {
		c.logger.Error("failed to notify about interrupted broadcast", "chat_id", cp.ChatID, "error", err)
	}
	if err := c.checkpoints.ClearCheckpoint(ctx); err != nil {
		return cp, err
	}
	return cp, nil
}

func (c *BroadcastCoordinator) reply(ctx context.Context, chatID int64, replyTo int, text string, markup *models.InlineKeyboardMarkup) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if replyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo, AllowSendingWithoutReply: true}
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	msg, err := c.messenger.SendMessage(ctx, params)
	if err != nil {
		c.logger.Error("broadcast reply failed", "chat_id", chatID, "error", err)
		return nil, err
	}
	return msg, nil
}

func (c *BroadcastCoordinator) edit(ctx context.Context, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.messenger.EditMessageText(ctx, params); err != nil {
		c.logger.Warn("broadcast progress edit failed", "chat_id", chatID, "message_id", messageID, "error", err)
		return err
	}
	return nil
}

func (c *BroadcastCoordinator) deleteMessage(ctx context.Context, chatID int64, messageID int) {
	if _, err := c.messenger.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		c.logger.Debug("failed to delete broadcast progress message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}
