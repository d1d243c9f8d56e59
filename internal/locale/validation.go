package locale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

// ValidationError represents a problem found in the translation catalogs
type ValidationError struct {
	Type    string // "missing_translation", "duplicate_translation", "unused_key", "duplicate_key", "duplicate_json_key", "placeholder_mismatch"
	Message string
	Details map[string]interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// ValidationResult contains all validation errors found
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ByType returns the errors of one kind
func (r *ValidationResult) ByType(kind string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

// String returns a formatted string of all errors
func (r *ValidationResult) String() string {
	if !r.HasErrors() {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d validation errors:\n", len(r.Errors)))
	for i, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*\.(\w+)\s*\}\}`)

// ValidateTranslations checks keys.go against every embedded catalog. It
// needs the package sources, so it runs from tests rather than at startup.
func ValidateTranslations() (*ValidationResult, error) {
	_, filename, _, _ := runtime.Caller(0)
	keysPath := filepath.Join(filepath.Dir(filename), "keys.go")

	messageKeys, err := extractMessageKeysFromFile(keysPath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract message keys: %w", err)
	}

	result := &ValidationResult{}
	translations := make(map[string]map[string]string, len(Supported))

	for _, lang := range Supported {
		data, err := localizedata.ReadFile(fmt.Sprintf("locales/%s.json", lang))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s.json: %w", lang, err)
		}

		trans, duplicates, err := decodeCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s.json: %w", lang, err)
		}
		translations[lang] = trans

		for _, key := range duplicates {
			result.add("duplicate_json_key", fmt.Sprintf("Duplicate key in %s.json: %s", lang, key),
				map[string]interface{}{"language": lang, "key": key})
		}
	}

	result.checkDuplicateKeys(messageKeys)
	result.checkMissingTranslations(messageKeys, translations)
	result.checkDuplicateTranslations(translations)
	result.checkUnusedKeys(messageKeys, translations)
	result.checkPlaceholders(translations)

	return result, nil
}

func (r *ValidationResult) add(kind, msg string, details map[string]interface{}) {
	r.Errors = append(r.Errors, ValidationError{Type: kind, Message: msg, Details: details})
}

// decodeCatalog streams a flat JSON object so that repeated keys, which
// json.Unmarshal silently collapses, are reported.
func decodeCatalog(data []byte) (map[string]string, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object")
	}

	out := make(map[string]string)
	var duplicates []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("key %s: %w", key, err)
		}
		if strings.HasPrefix(key, "_") {
			continue
		}
		if _, seen := out[key]; seen {
			duplicates = append(duplicates, key)
		}
		out[key] = value
	}

	return out, duplicates, nil
}

func (r *ValidationResult) checkDuplicateKeys(messageKeys []string) {
	positions := make(map[string][]int)
	for i, key := range messageKeys {
		positions[key] = append(positions[key], i+1)
	}

	for _, key := range sortedKeys(positions) {
		if pos := positions[key]; len(pos) > 1 {
			r.add("duplicate_key",
				fmt.Sprintf("Duplicate key definition in keys.go: %s (appears %d times at positions %v)", key, len(pos), pos),
				map[string]interface{}{"key": key, "count": len(pos), "positions": pos})
		}
	}
}

func (r *ValidationResult) checkMissingTranslations(messageKeys []string, translations map[string]map[string]string) {
	for _, key := range messageKeys {
		for _, lang := range Supported {
			if _, exists := translations[lang][key]; !exists {
				r.add("missing_translation", fmt.Sprintf("Missing %s translation for key: %s", lang, key),
					map[string]interface{}{"key": key, "language": lang})
			}
		}
	}
}

func (r *ValidationResult) checkDuplicateTranslations(translations map[string]map[string]string) {
	for _, lang := range Supported {
		valueToKeys := make(map[string][]string)
		for key, value := range translations[lang] {
			normalized := strings.TrimSpace(value)
			if normalized == "" {
				continue
			}
			valueToKeys[normalized] = append(valueToKeys[normalized], key)
		}

		for _, value := range sortedKeys(valueToKeys) {
			keys := valueToKeys[value]
			if len(keys) > 1 {
				sort.Strings(keys)
				r.add("duplicate_translation", fmt.Sprintf("Duplicate %s translation value for keys: %v", lang, keys),
					map[string]interface{}{"language": lang, "keys": keys, "value": value})
			}
		}
	}
}

func (r *ValidationResult) checkUnusedKeys(messageKeys []string, translations map[string]map[string]string) {
	keySet := make(map[string]bool, len(messageKeys))
	for _, key := range messageKeys {
		keySet[key] = true
	}

	for _, lang := range Supported {
		for _, key := range sortedKeys(translations[lang]) {
			if !keySet[key] {
				r.add("unused_key", fmt.Sprintf("Key %s exists in %s.json but not defined in keys.go", key, lang),
					map[string]interface{}{"key": key, "language": lang})
			}
		}
	}
}

// checkPlaceholders requires every language to use the same template fields
// as English for each key.
func (r *ValidationResult) checkPlaceholders(translations map[string]map[string]string) {
	base := translations[En]
	for _, lang := range Supported {
		if lang == En {
			continue
		}
		for _, key := range sortedKeys(translations[lang]) {
			reference, ok := base[key]
			if !ok {
				continue
			}
			want := Placeholders(reference)
			got := Placeholders(translations[lang][key])
			if strings.Join(want, ",") != strings.Join(got, ",") {
				r.add("placeholder_mismatch",
					fmt.Sprintf("Key %s uses %v in %s.json but %v in en.json", key, got, lang, want),
					map[string]interface{}{"key": key, "language": lang})
			}
		}
	}
}

// Placeholders returns the sorted, de-duplicated template fields of a message
func Placeholders(message string) []string {
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(message, -1) {
		seen[m[1]] = true
	}
	return sortedKeys(seen)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extractMessageKeysFromFile extracts all message key constants from keys.go
func extractMessageKeysFromFile(filename string) ([]string, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, decl := range node.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok || len(valueSpec.Values) == 0 {
				continue
			}
			if basicLit, ok := valueSpec.Values[0].(*ast.BasicLit); ok && basicLit.Kind == token.STRING {
				value := basicLit.Value
				if len(value) >= 2 {
					value = value[1 : len(value)-1]
				}
				keys = append(keys, value)
			}
		}
	}

	return keys, nil
}
