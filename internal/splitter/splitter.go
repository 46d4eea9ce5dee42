// Package splitter turns arbitrarily long message text into ordered,
// bounded-length chunks safe to send through the Telegram API. Boundaries are
// preferred in the order paragraph > sentence > word; a single word longer
// than the limit is hard-cut at the rune boundary. All limits are counted in
// runes, never bytes, so multi-byte scripts (the course content is Khmer) are
// never cut mid-codepoint.
package splitter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// TelegramMessageLimit is the hard per-message cap imposed by the API.
	TelegramMessageLimit = 4096

	// DefaultChunkLimit leaves headroom below the hard cap for the appended
	// part indicator.
	DefaultChunkLimit = 3500
)

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// Split breaks message into chunks of at most limit runes each. It is a pure
// function: same input, same output, no external state. Chunks are emitted in
// source order and trimmed of surrounding whitespace; empty chunks are never
// emitted. The only chunks allowed to reach exactly limit runes come from the
// forced hard-cut of a single oversized word.
func Split(message string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}
	if runeLen(message) <= limit {
		return []string{message}
	}

	var chunks []string
	cur := ""

	for _, par := range strings.Split(message, "\n\n") {
		if runeLen(cur)+runeLen(par)+2 > limit {
			if strings.TrimSpace(cur) != "" {
				chunks = append(chunks, strings.TrimSpace(cur))
				cur = ""
			}
			if runeLen(par) > limit {
				chunks = append(chunks, splitParagraph(par, limit)...)
			} else {
				cur = par
			}
		} else {
			if cur != "" {
				cur += "\n\n" + par
			} else {
				cur = par
			}
		}
	}

	if strings.TrimSpace(cur) != "" {
		chunks = append(chunks, strings.TrimSpace(cur))
	}
	return chunks
}

// splitParagraph breaks one oversized paragraph at sentence boundaries,
// falling back to word boundaries and finally the hard rune cut.
func splitParagraph(par string, limit int) []string {
	var chunks []string
	cur := ""

	for _, sent := range splitSentences(par) {
		if runeLen(cur)+runeLen(sent)+1 > limit {
			if strings.TrimSpace(cur) != "" {
				chunks = append(chunks, strings.TrimSpace(cur))
				cur = ""
			}
			if runeLen(sent) > limit {
				var rest string
				chunks, rest = splitWords(chunks, sent, limit)
				cur = rest
			} else {
				cur = sent
			}
		} else {
			if cur != "" {
				cur += " " + sent
			} else {
				cur = sent
			}
		}
	}

	if strings.TrimSpace(cur) != "" {
		chunks = append(chunks, strings.TrimSpace(cur))
	}
	return chunks
}

// splitWords breaks one oversized sentence at single spaces. A word that alone
// exceeds the limit is cut into exact-limit pieces; the final remainder keeps
// accumulating with the following words. Returns the completed chunks and the
// unfinished tail.
func splitWords(chunks []string, sent string, limit int) ([]string, string) {
	cur := ""
	for _, word := range strings.Split(sent, " ") {
		if runeLen(cur)+runeLen(word)+1 > limit {
			if strings.TrimSpace(cur) != "" {
				chunks = append(chunks, strings.TrimSpace(cur))
				cur = ""
			}
			r := []rune(word)
			for len(r) > limit {
				chunks = append(chunks, string(r[:limit]))
				r = r[limit:]
			}
			cur = string(r)
		} else {
			if cur != "" {
				cur += " " + word
			} else {
				cur = word
			}
		}
	}
	return chunks, cur
}

// splitSentences splits after terminal punctuation (. ! ?) followed by
// whitespace. The trailing whitespace run is consumed; the punctuation stays
// with its sentence.
func splitSentences(s string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isTerminal(runes[i]) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			out = append(out, b.String())
			b.Reset()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }
