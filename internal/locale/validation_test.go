package locale

import (
	"reflect"
	"testing"
)

// TestValidateTranslations tests the translation validation functionality
func TestValidateTranslations(t *testing.T) {
	result, err := ValidateTranslations()
	if err != nil {
		t.Fatalf("Validation failed with error: %v", err)
	}

	if !result.HasErrors() {
		return
	}
	t.Logf("Validation found issues:\n%s", result.String())

	for _, kind := range []string{"missing_translation", "unused_key", "duplicate_key", "duplicate_json_key", "placeholder_mismatch"} {
		for _, e := range result.ByType(kind) {
			t.Errorf("  - %s", e.Error())
		}
	}
	if n := len(result.ByType("duplicate_translation")); n > 0 {
		t.Logf("Found %d duplicate translations (warning only)", n)
	}
}

func TestDecodeCatalog(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		want       map[string]string
		duplicates []string
		wantErr    bool
	}{
		{
			name: "flat object",
			data: `{"A": "a", "B": "b {{.f1}}"}`,
			want: map[string]string{"A": "a", "B": "b {{.f1}}"},
		},
		{
			name:       "repeated key",
			data:       `{"A": "a", "B": "b", "A": "again"}`,
			want:       map[string]string{"A": "again", "B": "b"},
			duplicates: []string{"A"},
		},
		{
			name: "comment keys are skipped",
			data: `{"_comment": "ignored", "A": "a"}`,
			want: map[string]string{"A": "a"},
		},
		{
			name:    "not an object",
			data:    `["A"]`,
			wantErr: true,
		},
		{
			name:    "nested value",
			data:    `{"A": {"other": "a"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, duplicates, err := decodeCatalog([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeCatalog() = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(duplicates, tt.duplicates) {
				t.Errorf("duplicates = %v, want %v", duplicates, tt.duplicates)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		message string
		want    []string
	}{
		{"plain", []string{}},
		{"{{.f1}} of {{.f2}}", []string{"f1", "f2"}},
		{"{{ .f2 }} then {{.f1}} and {{.f1}}", []string{"f1", "f2"}},
	}

	for _, tt := range tests {
		if got := Placeholders(tt.message); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Placeholders(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestCheckPlaceholdersReportsMismatch(t *testing.T) {
	result := &ValidationResult{}
	result.checkPlaceholders(map[string]map[string]string{
		En: {"A": "{{.f1}} and {{.f2}}", "B": "{{.f1}}"},
		Ru: {"A": "{{.f1}}", "B": "{{.f1}}"},
	})

	errs := result.ByType("placeholder_mismatch")
	if len(errs) != 1 || errs[0].Details["key"] != "A" {
		t.Errorf("expected a single mismatch for A, got %v", result.Errors)
	}
}

// TestTemplateParametersSequential requires {{.f1}}..{{.fN}} without gaps so
// MustLocalizeWithTemplate arguments line up with the message.
func TestTemplateParametersSequential(t *testing.T) {
	for _, lang := range Supported {
		data, err := localizedata.ReadFile("locales/" + lang + ".json")
		if err != nil {
			t.Fatalf("read %s: %v", lang, err)
		}
		catalog, _, err := decodeCatalog(data)
		if err != nil {
			t.Fatalf("parse %s: %v", lang, err)
		}

		for key, message := range catalog {
			params := Placeholders(message)
			for i, p := range params {
				if p != "f"+string(rune('1'+i)) {
					t.Errorf("%s.json %s: parameters %v are not sequential", lang, key, params)
					break
				}
			}
		}
	}
}
