package storage

import (
	"context"
	"fmt"

	"github.com/ad/fsub-archive-bot/internal/domain"
)

// SettingsRepository handles the bot preference fields
type SettingsRepository struct {
	doc botDocument
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(store *DocumentStore, botID int64) *SettingsRepository {
	return &SettingsRepository{doc: newBotDocument(store, botID)}
}

// LoadSettings reads all preferences. Missing fields read as zero values.
func (r *SettingsRepository) LoadSettings(ctx context.Context) (domain.Settings, error) {
	doc, err := r.doc.store.GetDoc(ctx, r.doc.docID)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	var s domain.Settings
	s.GenerateMode, _ = doc.FirstBool(FieldGenerateMode)
	s.ProtectContent, _ = doc.FirstBool(FieldProtectContent)
	s.StartText, _ = doc.FirstString(FieldStartText)
	s.ForceText, _ = doc.FirstString(FieldForceText)
	return s, nil
}

// EnsureDefaults writes every preference that is missing and returns the
// names of the fields it initialized
func (r *SettingsRepository) EnsureDefaults(ctx context.Context, defaults domain.Settings) ([]string, error) {
	doc, err := r.doc.store.GetDoc(ctx, r.doc.docID)
	if err != nil {
		return nil, fmt.Errorf("ensure defaults: %w", err)
	}

	fields := []struct {
		name  string
		value interface{}
	}{
		{FieldGenerateMode, defaults.GenerateMode},
		{FieldProtectContent, defaults.ProtectContent},
		{FieldForceText, defaults.ForceText},
		{FieldStartText, defaults.StartText},
	}

	var initialized []string
	for _, f := range fields {
		if doc.Has(f.name) {
			continue
		}
		if _, err := r.doc.store.AddValue(ctx, r.doc.docID, f.name, f.value); err != nil {
			return initialized, fmt.Errorf("init %s: %w", f.name, err)
		}
		initialized = append(initialized, f.name)
	}
	return initialized, nil
}

// SetGenerateMode stores the generate mode flag
func (r *SettingsRepository) SetGenerateMode(ctx context.Context, enabled bool) error {
	return r.doc.store.SetValue(ctx, r.doc.docID, FieldGenerateMode, enabled)
}

// SetProtectContent stores the content protection flag
func (r *SettingsRepository) SetProtectContent(ctx context.Context, enabled bool) error {
	return r.doc.store.SetValue(ctx, r.doc.docID, FieldProtectContent, enabled)
}

// SetStartText stores the start text template
func (r *SettingsRepository) SetStartText(ctx context.Context, text string) error {
	return r.doc.store.SetValue(ctx, r.doc.docID, FieldStartText, text)
}

// SetForceText stores the force text template
func (r *SettingsRepository) SetForceText(ctx context.Context, text string) error {
	return r.doc.store.SetValue(ctx, r.doc.docID, FieldForceText, text)
}

// RecordArchiveChat stores the archive chat id links are issued under and
// returns the previously recorded one (0 when none)
func (r *SettingsRepository) RecordArchiveChat(ctx context.Context, chatID int64) (int64, error) {
	doc, err := r.doc.store.GetDoc(ctx, r.doc.docID)
	if err != nil {
		return 0, fmt.Errorf("record archive chat: %w", err)
	}

	var previous int64
	if ids := doc.Int64s(FieldArchiveChat); len(ids) > 0 {
		previous = ids[0]
	}
	if previous == chatID {
		return previous, nil
	}
	if err := r.doc.store.SetValue(ctx, r.doc.docID, FieldArchiveChat, chatID); err != nil {
		return previous, fmt.Errorf("record archive chat: %w", err)
	}
	return previous, nil
}
