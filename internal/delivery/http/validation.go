package http

import (
	"strings"
	"unicode/utf8"

	"github.com/mmuslimabdulj/calcvault/internal/domain"
)

// IsAllowedEmoji reports whether emoji is on the reaction palette
func IsAllowedEmoji(emoji string) bool {
	for _, e := range domain.Emojis {
		if e == emoji {
			return true
		}
	}
	return false
}

// cleanMessage trims text and reports whether it is sendable within maxBytes
func cleanMessage(text string, maxBytes int) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxBytes || !utf8.ValidString(text) {
		return "", false
	}
	return text, true
}
