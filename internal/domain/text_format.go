package domain

import (
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"
)

// FullName joins first and last name
func FullName(user *models.User) string {
	if user == nil {
		return ""
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

// Mention renders an HTML link to the user's profile
func Mention(user *models.User) string {
	if user == nil {
		return ""
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, user.ID, html.EscapeString(FullName(user)))
}

// FormatUserText fills the {first_name}, {last_name}, {full_name} and
// {mention} placeholders of an HTML template. Unknown placeholders are kept.
func FormatUserText(template string, user *models.User) string {
	if user == nil {
		return template
	}
	r := strings.NewReplacer(
		"{first_name}", html.EscapeString(user.FirstName),
		"{last_name}", html.EscapeString(user.LastName),
		"{full_name}", html.EscapeString(FullName(user)),
		"{mention}", Mention(user),
	)
	return r.Replace(template)
}
