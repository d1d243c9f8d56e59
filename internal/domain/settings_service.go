package domain

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SettingsService caches admins and preferences for the whole process.
// Every mutation is persisted first, then the cache is rebuilt from storage
// and swapped in.
type SettingsService struct {
	adminRepo    AdminRepository
	settingsRepo SettingsRepository
	ownerID      int64
	logger       Logger

	writeMu sync.Mutex

	mu       sync.RWMutex
	admins   []int64
	adminSet map[int64]struct{}
	current  Settings
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(adminRepo AdminRepository, settingsRepo SettingsRepository, ownerID int64, logger Logger) *SettingsService {
	return &SettingsService{
		adminRepo:    adminRepo,
		settingsRepo: settingsRepo,
		ownerID:      ownerID,
		logger:       logger,
		admins:       []int64{ownerID},
		adminSet:     map[int64]struct{}{ownerID: {}},
	}
}

// Init writes missing defaults and loads the caches
func (s *SettingsService) Init(ctx context.Context) error {
	initialized, err := s.settingsRepo.EnsureDefaults(ctx, DefaultSettings())
	if err != nil {
		return err
	}
	for _, field := range initialized {
		s.logger.Info("setting initialized with default", "field", field)
	}

	if err := s.reloadAdmins(ctx); err != nil {
		return err
	}
	return s.reloadSettings(ctx)
}

func (s *SettingsService) reloadAdmins(ctx context.Context) error {
	stored, err := s.adminRepo.ListAdmins(ctx)
	if err != nil {
		return fmt.Errorf("load admins: %w", err)
	}

	admins := make([]int64, 0, len(stored)+1)
	set := make(map[int64]struct{}, len(stored)+1)
	for _, id := range append(stored, s.ownerID) {
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		admins = append(admins, id)
	}

	s.mu.Lock()
	s.admins = admins
	s.adminSet = set
	s.mu.Unlock()

	for i, id := range admins {
		s.logger.Debug("bot admin", "position", i+1, "user_id", id)
	}
	return nil
}

func (s *SettingsService) reloadSettings(ctx context.Context) error {
	settings, err := s.settingsRepo.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()
	return nil
}

// OwnerID returns the configured owner
func (s *SettingsService) OwnerID() int64 {
	return s.ownerID
}

// IsAdmin reports whether userID is the owner or a stored admin
func (s *SettingsService) IsAdmin(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.adminSet[userID]
	return ok
}

// Admins returns stored admins followed by the owner
func (s *SettingsService) Admins() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, len(s.admins))
	copy(out, s.admins)
	return out
}

// ExtraAdmins returns the admins other than the owner
func (s *SettingsService) ExtraAdmins() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.admins))
	for _, id := range s.admins {
		if id != s.ownerID {
			out = append(out, id)
		}
	}
	return out
}

// AddAdmin grants admin rights to userID
func (s *SettingsService) AddAdmin(ctx context.Context, userID int64) error {
	if userID == 0 {
		return ErrInvalidUserID
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.IsAdmin(userID) {
		return ErrAlreadyExists
	}
	if _, err := s.adminRepo.AddAdmin(ctx, userID); err != nil {
		return fmt.Errorf("add admin: %w", err)
	}
	s.logger.Info("bot admins updated", "added", userID)
	return s.reloadAdmins(ctx)
}

// RemoveAdmin revokes admin rights. The owner and the acting admin cannot
// be removed.
func (s *SettingsService) RemoveAdmin(ctx context.Context, actorID, userID int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.IsAdmin(userID) {
		return ErrNotFound
	}
	if userID == actorID {
		return ErrSelfRemoval
	}
	if userID == s.ownerID {
		return ErrOwnerRemoval
	}
	if _, err := s.adminRepo.RemoveAdmin(ctx, userID); err != nil {
		return fmt.Errorf("remove admin: %w", err)
	}
	s.logger.Info("bot admins updated", "removed", userID)
	return s.reloadAdmins(ctx)
}

// Settings returns the cached preferences
func (s *SettingsService) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// StartText returns the start text template
func (s *SettingsService) StartText() string {
	return s.Settings().StartText
}

// ForceText returns the force text template
func (s *SettingsService) ForceText() string {
	return s.Settings().ForceText
}

// GenerateMode reports whether admin messages are turned into links
func (s *SettingsService) GenerateMode() bool {
	return s.Settings().GenerateMode
}

// ProtectContent reports whether delivered copies are protected
func (s *SettingsService) ProtectContent() bool {
	return s.Settings().ProtectContent
}

// SetStartText replaces the start text template
func (s *SettingsService) SetStartText(ctx context.Context, text string) error {
	return s.update(ctx, "start text", func() error {
		if strings.TrimSpace(text) == "" {
			return ErrEmptyText
		}
		return s.settingsRepo.SetStartText(ctx, text)
	})
}

// SetForceText replaces the force text template
func (s *SettingsService) SetForceText(ctx context.Context, text string) error {
	return s.update(ctx, "force text", func() error {
		if strings.TrimSpace(text) == "" {
			return ErrEmptyText
		}
		return s.settingsRepo.SetForceText(ctx, text)
	})
}

// ToggleGenerateMode flips generate mode and returns the new value
func (s *SettingsService) ToggleGenerateMode(ctx context.Context) (bool, error) {
	err := s.update(ctx, "generate mode", func() error {
		return s.settingsRepo.SetGenerateMode(ctx, !s.GenerateMode())
	})
	return s.GenerateMode(), err
}

// ToggleProtectContent flips content protection and returns the new value
func (s *SettingsService) ToggleProtectContent(ctx context.Context) (bool, error) {
	err := s.update(ctx, "protect content", func() error {
		return s.settingsRepo.SetProtectContent(ctx, !s.ProtectContent())
	})
	return s.ProtectContent(), err
}

func (s *SettingsService) update(ctx context.Context, what string, write func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := write(); err != nil {
		return err
	}
	s.logger.Info("setting changed", "setting", what)
	return s.reloadSettings(ctx)
}
