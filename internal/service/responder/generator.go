// Package responder produces placeholder replies when the upstream backend
// cannot answer. The classifier is deterministic so the gateway behaves the
// same whether fallback happens before or after a proxied attempt.
package responder

import (
	"fmt"
	"strings"

	"github.com/sedanonpc/ddcore/internal/model/chat"
)

// rule maps trigger terms to a canned reply. Rules are checked in order and
// the first matching term wins, so priority is total.
type rule struct {
	terms []string
	reply string
}

var rules = []rule{
	{
		terms: []string{"f1", "formula"},
		reply: "I can help you with F1 predictions and analysis! Based on current data, I'd recommend checking the latest qualifying results and driver performance metrics.",
	},
	{
		terms: []string{"bet", "betting"},
		reply: "For sports betting insights, I can analyze match statistics, team performance, and historical data to help you make informed decisions.",
	},
	{
		terms: []string{"hello", "hi"},
		reply: "Hello! I'm your AI assistant for sports betting and F1 analysis. How can I help you today?",
	},
}

const transcriptionUnavailable = "I received your voice message, but speech-to-text is not implemented yet. Please use text messages for now."

// Generator is the local placeholder responder. A real inference or speech
// engine can replace it behind the same methods without touching the
// gateway.
type Generator struct{}

// New builds the placeholder generator.
func New() *Generator {
	return &Generator{}
}

// RespondText classifies the message by case-insensitive substring match
// against the trigger terms and returns the matching reply, falling back to
// an echo-style answer that names the original message.
func (g *Generator) RespondText(message string, _ []chat.Message) string {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, term := range r.terms {
			if strings.Contains(lower, term) {
				return r.reply
			}
		}
	}
	return fmt.Sprintf("I understand you said: '%s'. I'm here to help with sports betting analysis, F1 predictions, and match insights. What specific information are you looking for?", message)
}

// RespondVoice stands in for speech-to-text. It ignores the audio and
// reports that transcription is unavailable.
func (g *Generator) RespondVoice(_ []byte) string {
	return transcriptionUnavailable
}

// Synthesize stands in for text-to-speech. No audio reference is produced.
func (g *Generator) Synthesize(_ string) (string, bool) {
	return "", false
}
