package encoding

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEncodeToken(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "empty", payload: "", want: ""},
		{name: "one byte", payload: "a", want: "YQ"},
		{name: "two bytes", payload: "ab", want: "YWI"},
		{name: "three bytes", payload: "abc", want: "YWJj"},
		{name: "single payload", payload: "id-42051851851380", want: "aWQtNDIwNTE4NTE4NTEzODA"},
		{name: "url-safe alphabet", payload: "\xfb\xff", want: "-_8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeToken(tt.payload); got != tt.want {
				t.Errorf("EncodeToken(%q) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}

func TestDecodeToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{name: "empty", token: "", want: ""},
		{name: "stripped padding", token: "YQ", want: "a"},
		{name: "kept padding", token: "YQ==", want: "a"},
		{name: "no padding needed", token: "YWJj", want: "abc"},
		{name: "payload", token: "aWQtNDIwNTE4NTE4NTEzODA", want: "id-42051851851380"},
		{name: "impossible length", token: "YWJjZ", wantErr: true},
		{name: "standard alphabet rejected", token: "+/8", wantErr: true},
		{name: "garbage", token: "!!!!", wantErr: true},
		{name: "not utf8", token: "-_8", wantErr: true},
		{name: "non-canonical trailing bits", token: "YR", want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("DecodeToken(%q) error = %v, want ErrInvalidToken", tt.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeToken(%q) unexpected error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("DecodeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(p)) == p", prop.ForAll(
		func(payload string) bool {
			decoded, err := DecodeToken(EncodeToken(payload))
			return err == nil && decoded == payload
		},
		gen.AnyString(),
	))

	properties.Property("tokens need no query escaping and carry no padding", prop.ForAll(
		func(payload string) bool {
			token := EncodeToken(payload)
			return url.QueryEscape(token) == token && !strings.Contains(token, "=")
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
