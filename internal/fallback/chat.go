package fallback

import (
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/models"
)

const (
	derivativeReply = "A derivative measures how a function changes as its input changes: it is the slope of the tangent line at a point. " +
		"For example, with the power rule d/dx[xⁿ] = n·xⁿ⁻¹, the derivative of x³ is 3x². Try differentiating x⁴ and tell me what you get!"

	chainRuleReply = "The chain rule handles compositions of functions: if y = f(g(x)), then dy/dx = f'(g(x))·g'(x). " +
		"Differentiate the outer function, keep the inside unchanged, then multiply by the derivative of the inside. " +
		"For sin(x²), that gives cos(x²)·2x."

	integralReply = "Integration is the reverse of differentiation: it accumulates area under a curve. " +
		"For powers, ∫xⁿ dx = xⁿ⁺¹/(n+1) + C for n ≠ -1, so ∫x² dx = x³/3 + C. Don't forget the constant of integration!"

	limitReply = "A limit describes the value a function approaches as the input gets close to a point, even if the function isn't defined there. " +
		"For example, (x² - 1)/(x - 1) approaches 2 as x approaches 1, because it simplifies to x + 1."

	clarifyReply = "That's a great question! Could you tell me a bit more about what you're working on? " +
		"For example, share the problem you're stuck on or the step that feels confusing, and we'll work through it together."
)

// replyRules is checked in order; a message mentioning both "derivative" and
// "chain rule" gets the derivative explanation.
var replyRules = []rule[string]{
	{match: containsAny("derivative", "differentiate"), pick: constant(derivativeReply)},
	{match: containsAny("chain rule"), pick: constant(chainRuleReply)},
	{match: containsAny("integral", "integrate"), pick: constant(integralReply)},
	{match: containsAny("limit"), pick: constant(limitReply)},
}

// Respond picks a canned explanation for a chat message. Conversation
// history is never consulted.
func Respond(message string, now time.Time) models.ChatReply {
	return models.ChatReply{
		Text:      firstMatch(replyRules, message, constant(clarifyReply)),
		Timestamp: now,
	}
}
