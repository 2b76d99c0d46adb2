// Package format post-processes model replies before they are sent to
// Telegram: markdown emphasis the model was told not to use is stripped, and
// replies longer than Telegram's message limit are split into chunks.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// Telegram rejects messages longer than 4096 characters; keep headroom
	// for part prefixes added by the caller.
	MaxMessageLength = 4000
	ChunkBodyLimit   = 3400
)

var (
	codeBlockRe = regexp.MustCompile("(?s)```.*?```")
	boldRe      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe    = regexp.MustCompile(`\*([^*]+)\*`)
	underlineRe = regexp.MustCompile(`__([^_]+)__`)
	emphasisRe  = regexp.MustCompile(`_([^_]+)_`)
)

// RemoveMarkdownStars drops bold/italic/underline markers outside fenced
// code blocks. Code blocks come back untouched.
func RemoveMarkdownStars(text string) string {
	var blocks []string
	masked := codeBlockRe.ReplaceAllStringFunc(text, func(m string) string {
		blocks = append(blocks, m)
		return fmt.Sprintf("\x00code%d\x00", len(blocks)-1)
	})

	masked = boldRe.ReplaceAllString(masked, "$1")
	masked = italicRe.ReplaceAllString(masked, "$1")
	masked = underlineRe.ReplaceAllString(masked, "$1")
	masked = emphasisRe.ReplaceAllString(masked, "$1")

	for i, b := range blocks {
		masked = strings.Replace(masked, fmt.Sprintf("\x00code%d\x00", i), b, 1)
	}
	return masked
}

// Split breaks text into chunks of at most limit characters, cutting at a
// line break when one falls in the second half of the chunk.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = ChunkBodyLimit
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
