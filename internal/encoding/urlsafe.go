// Package encoding converts deep-link payloads to and from the opaque
// tokens carried in Telegram start parameters.
package encoding

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidToken is returned when a token is not padded-stripped base64url
// or does not decode to UTF-8 text
var ErrInvalidToken = errors.New("invalid token")

// EncodeToken encodes payload with the URL-safe base64 alphabet and strips
// the trailing '=' padding
func EncodeToken(payload string) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString([]byte(payload)), "=")
}

// DecodeToken reverses EncodeToken. Padding is restored before decoding so
// tokens produced by other encoders that keep it are accepted too.
func DecodeToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	stripped := strings.TrimRight(token, "=")
	if len(stripped)%4 == 1 {
		return "", ErrInvalidToken
	}
	padded := stripped + strings.Repeat("=", (4-len(stripped)%4)%4)

	data, err := base64.URLEncoding.DecodeString(padded)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidToken
	}
	return string(data), nil
}
