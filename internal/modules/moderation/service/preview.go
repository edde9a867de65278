package service

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// CaptionLimit is the longest caption Telegram accepts on a photo or document, in UTF-16 units
const CaptionLimit = 1024

const (
	mediaPlaceholder = "📷 Photo/media"
	ellipsis         = "..."
)

// BuildPreview renders the message an owner sees before deciding. Text is cut to limit characters;
// when the preview travels as a caption the whole message is also kept within CaptionLimit.
func BuildPreview(source, target, text string, hasMedia, asCaption bool, limit int) string {
	header := fmt.Sprintf("📢 New post in %s\n🎯 For %s\n\n", source, target)

	body := strings.TrimSpace(text)
	if body == "" {
		if hasMedia {
			return header + mediaPlaceholder
		}
		return strings.TrimSpace(header)
	}

	preview := header + cut(body, limit)
	if asCaption && TextLen(preview) > CaptionLimit {
		room := CaptionLimit - TextLen(header) - TextLen(ellipsis)
		preview = header + cutUnits(body, max(room, 0))
	}
	return preview
}

// TextLen measures s the way Telegram counts message limits, in UTF-16 code units
func TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func cut(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + ellipsis
}

// cutUnits keeps the longest prefix of text that fits in units UTF-16 code units
func cutUnits(text string, units int) string {
	used := 0
	for i, r := range text {
		n := utf16.RuneLen(r)
		if used+n > units {
			return text[:i] + ellipsis
		}
		used += n
	}
	return text
}
