package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localizedata embed.FS

const (
	Ru = "ru"
	En = "en"
)

// Supported lists the languages shipped in locales/
var Supported = []string{En, Ru}

// Localizer renders message keys in one configured language
type Localizer interface {
	GetLocale() string
	MustLocalize(id string) string
	MustLocalizeWithTemplate(id string, fields ...string) string
}

type localizer struct {
	lang string
	*i18n.Localizer
}

// NewLocalizer loads the embedded catalogs and returns a localizer for lang.
// Messages missing in lang fall back to English.
func NewLocalizer(lang string) (Localizer, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = En
	}
	if !isSupported(lang) {
		return nil, fmt.Errorf("unsupported locale %q, expected one of %v", lang, Supported)
	}

	bundle, err := loadBundle()
	if err != nil {
		return nil, err
	}

	return &localizer{
		lang:      lang,
		Localizer: i18n.NewLocalizer(bundle, lang, En),
	}, nil
}

func loadBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := fs.Glob(localizedata, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list translation files: %w", err)
	}

	for _, f := range files {
		data, err := localizedata.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load translation data %s: %w", f, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(f)); err != nil {
			return nil, fmt.Errorf("failed to parse translation data %s: %w", f, err)
		}
	}

	return bundle, nil
}

func isSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

func (l *localizer) GetLocale() string {
	return l.lang
}

func (l *localizer) MustLocalize(id string) string {
	return l.Localizer.MustLocalize(&i18n.LocalizeConfig{MessageID: id})
}

// MustLocalizeWithTemplate binds fields positionally to {{.f1}}, {{.f2}} ...
func (l *localizer) MustLocalizeWithTemplate(id string, fields ...string) string {
	td := make(map[string]interface{}, len(fields))
	for i, f := range fields {
		td["f"+strconv.Itoa(i+1)] = f
	}

	return l.Localizer.MustLocalize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: td,
	})
}
