package telegram

import (
	"strings"
	"unicode/utf8"
)

// splitText breaks text into chunks of at most maxLen runes, preferring
// line boundaries. Lines longer than maxLen are hard-split.
func splitText(text string, maxLen int) []string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, strings.TrimSuffix(current.String(), "\n"))
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if currentLen+n > maxLen {
			flush()
		}
		for n > maxLen {
			runes := []rune(line)
			chunks = append(chunks, string(runes[:maxLen]))
			line = string(runes[maxLen:])
			n -= maxLen
		}
		current.WriteString(line)
		currentLen += n
	}
	flush()

	return chunks
}
