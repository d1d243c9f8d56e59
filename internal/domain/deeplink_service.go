package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// DeepLinkService builds the public links that point at archive content
type DeepLinkService struct {
	botUsername string
	addressing  *ArchiveAddressing
}

// NewDeepLinkService creates a new DeepLinkService with the specified bot username
func NewDeepLinkService(botUsername string, addressing *ArchiveAddressing) *DeepLinkService {
	return &DeepLinkService{
		botUsername: botUsername,
		addressing:  addressing,
	}
}

// StartURL wraps a token into a bot start link
// Format: https://t.me/{bot_username}?start={token}
func (s *DeepLinkService) StartURL(token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, token)
}

// SingleLink returns the start link for one archive message
func (s *DeepLinkService) SingleLink(archiveID int) string {
	return s.StartURL(s.addressing.SingleToken(archiveID))
}

// RangeLink returns the start link for an inclusive range of archive messages
func (s *DeepLinkService) RangeLink(first, last int) string {
	return s.StartURL(s.addressing.RangeToken(first, last))
}

// ShareURL returns a Telegram share link for link
func (s *DeepLinkService) ShareURL(link string) string {
	return "https://t.me/share/url?url=" + url.QueryEscape(link)
}

// StartParam extracts the parameter of a /start command.
// "/start abc" and "/start@bot abc" both yield "abc"; a bare /start yields "".
func StartParam(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
