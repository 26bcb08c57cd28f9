package agent

import (
	"regexp"
	"strings"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

// openers is the fixed greeting rotation. Full rotation is guaranteed
// before any phrase repeats.
var openers = []string{
	"Thanks for reaching out!",
	"Great to hear from you!",
	"Happy to help with that.",
	"Good question!",
	"Glad you asked.",
}

// maxSentences caps the length of any outgoing reply.
const maxSentences = 4

var fillerPattern = regexp.MustCompile(`(?i)(i'd love to help|i'm happy to help)`)

// NextOpener returns the opener for the given style state and the advanced
// state. Pure function: the caller decides whether and how to persist the
// rotation.
func NextOpener(style model.StyleState) (string, model.StyleState) {
	idx := style.NextOpener % len(openers)
	if idx < 0 {
		idx += len(openers)
	}
	return openers[idx], model.StyleState{NextOpener: (idx + 1) % len(openers)}
}

// OpenerCount reports the size of the rotation.
func OpenerCount() int { return len(openers) }

// PostProcess enforces the house reply style: at most one question, at most
// four sentences, and normalized filler phrasing.
func PostProcess(reply string) string {
	reply = limitQuestions(reply)
	reply = capSentences(reply, maxSentences)
	reply = fillerPattern.ReplaceAllString(reply, "Happy to help")
	return strings.TrimSpace(reply)
}

// limitQuestions keeps the first question mark and rewrites every later one
// to a period.
func limitQuestions(text string) string {
	first := strings.IndexByte(text, '?')
	if first < 0 {
		return text
	}
	rest := strings.ReplaceAll(text[first+1:], "?", ".")
	return text[:first+1] + rest
}

// capSentences truncates text after max sentences. A sentence ends at a
// '.', '!', or '?' followed by whitespace; text with no terminator counts
// as a single sentence and is kept whole.
func capSentences(text string, max int) string {
	count := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if isSpace(text[i+1]) {
				count++
				if count >= max {
					return text[:i+1]
				}
			}
		}
	}
	return text
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
