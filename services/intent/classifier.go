// File: services/intent/classifier.go
package intent

import (
	"context"
	"fmt"
	"strings"

	"bookline/models"
	"bookline/services/intelligence"
	"bookline/utils"

	"go.uber.org/zap"
)

// Router is the hybrid classifier: deterministic per-language rules first,
// generative fallback only when no rule fires with sufficient specificity.
type Router struct {
	ai intelligence.Client
}

// NewRouter builds a Router. The AI client may be nil, in which case the
// fallback is skipped entirely.
func NewRouter(ai intelligence.Client) *Router {
	return &Router{ai: ai}
}

// Classify routes one inbound message into the closed intent enumeration.
// recentHistory is the session transcript (oldest first); postBooking marks
// a client with an outstanding appointment, which reshapes affirmations.
func (r *Router) Classify(
	ctx context.Context,
	text, language string,
	recentHistory []models.ChatMessage,
	postBooking bool,
) models.Classification {
	lang := DetectLanguage(text, language)
	ents := ExtractEntities(text, lang)

	it, conf := matchRules(text, lang, ents)

	// An affirmation right after the bot asked about cancelling is the
	// cancel confirmation, not a booking one.
	if it == models.IntentBookingConfirm && lastBotAskedCancel(recentHistory) {
		it = models.IntentCancelConfirm
	}

	if conf > 0 {
		return models.Classification{Intent: it, Confidence: conf, Entities: ents}
	}

	if r.ai != nil {
		if mi, ok := r.modelFallback(ctx, text, lang, recentHistory, postBooking); ok {
			return models.Classification{Intent: mi, Confidence: 0.7, Entities: ents}
		}
	}

	// Rule-only fallback: ambiguous-but-harmless chatter. The low
	// confidence keeps the off-topic guardrail from firing.
	return models.Classification{Intent: models.IntentOffTopic, Confidence: 0.3, Entities: ents}
}

// modelFallback asks the generative collaborator to pick one intent token
// and validates the answer against the closed enumeration. Any malformed
// or unrecognized output degrades to the rule-only result.
func (r *Router) modelFallback(
	ctx context.Context,
	text, lang string,
	recentHistory []models.ChatMessage,
	postBooking bool,
) (models.Intent, bool) {
	prompt := buildFallbackPrompt(text, lang, recentHistory, postBooking)

	out, err := r.ai.Complete(ctx, prompt)
	if err != nil {
		utils.GetLogger().Warn("intent model fallback failed",
			zap.Error(err))
		return "", false
	}

	token := models.Intent(strings.ToLower(strings.TrimSpace(strings.Trim(out, "\"'`. \n"))))
	if !models.ValidIntents[token] {
		utils.GetLogger().Warn("intent model returned unrecognized token",
			zap.String("token", string(token)))
		return "", false
	}
	return token, true
}

func buildFallbackPrompt(text, lang string, history []models.ChatMessage, postBooking bool) string {
	var sb strings.Builder
	sb.WriteString("Classify the client's last message into exactly one of these intents:\n")
	for it := range models.ValidIntents {
		sb.WriteString(string(it))
		sb.WriteString("\n")
	}
	sb.WriteString("Answer with the intent token only, nothing else.\n")
	if postBooking {
		sb.WriteString("The client already has a confirmed upcoming appointment.\n")
	}
	fmt.Fprintf(&sb, "Client language: %s\n", lang)
	// Keep the prompt compact: only the last few turns matter.
	start := len(history) - 6
	if start < 0 {
		start = 0
	}
	for _, m := range history[start:] {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Text)
	}
	fmt.Fprintf(&sb, "client: %s\n", text)
	return sb.String()
}

func lastBotAskedCancel(history []models.ChatMessage) bool {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != "bot" {
			continue
		}
		lower := strings.ToLower(history[i].Text)
		return strings.Contains(lower, "cancel") || strings.Contains(lower, "cancelar") ||
			strings.Contains(lower, "desmarcar") || strings.Contains(lower, "anular")
	}
	return false
}
