package usecase

import (
	"strings"
	"unicode/utf8"
)

const (
	noticeReasonLimit = 120
	fallbackNotice    = "Enhancement skipped, raw transcript used: "
)

// truncateReason caps reason at limit runes, ellipsized.
func truncateReason(reason string, limit int) string {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) <= limit {
		return reason
	}
	runes := []rune(reason)
	return string(runes[:limit]) + "…"
}

func fallbackNoticeText(reason string) string {
	reason = truncateReason(reason, noticeReasonLimit)
	if reason == "" {
		reason = "unknown error"
	}
	return fallbackNotice + reason
}
