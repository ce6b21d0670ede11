package bridge

import (
	"strings"
	"unicode/utf8"
)

// SegmentLimit is the soft per-message character limit. The chat platform
// caps messages at 2000 characters; the margin leaves room for labels.
const SegmentLimit = 1900

// Role labels prepended to the first segment of each side of an exchange.
const (
	userLabel      = "**You:**"
	assistantLabel = "**Assistant:**"
)

// Split breaks content into segments of at most limit characters. Each cut
// prefers the last newline at or before the limit, then the last space, and
// falls back to a hard cut for unbroken runs.
func Split(content string, limit int) []string {
	if limit <= 0 {
		limit = SegmentLimit
	}
	if len(content) <= limit {
		if content == "" {
			return nil
		}
		return []string{content}
	}

	var segments []string
	rest := content
	for len(rest) > limit {
		cut := limit
		if i := strings.LastIndex(rest[:limit], "\n"); i > 0 {
			cut = i
		} else if i := strings.LastIndex(rest[:limit], " "); i > 0 {
			cut = i
		} else {
			// Hard cut: back off to a rune boundary.
			for cut > 0 && !utf8.RuneStart(rest[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		segments = append(segments, rest[:cut])
		rest = strings.TrimLeft(rest[cut:], " \n")
	}
	if rest != "" {
		segments = append(segments, rest)
	}
	return segments
}

// FormatExchange renders an exchange as a sequence of chat messages: the
// user content labeled and split, then the assistant content likewise.
// Empty sides are skipped.
func FormatExchange(ex Exchange) []string {
	var out []string
	out = append(out, labeledSegments(userLabel, ex.UserText)...)
	out = append(out, labeledSegments(assistantLabel, ex.AssistantText)...)
	return out
}

// labeledSegments splits content and prefixes the label to the first
// segment only.
func labeledSegments(label, content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	segments := Split(content, SegmentLimit)
	if len(segments) > 0 {
		segments[0] = label + "\n" + segments[0]
	}
	return segments
}
