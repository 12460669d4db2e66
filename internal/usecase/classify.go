package usecase

import (
	"regexp"
	"strings"

	"statute-agent/internal/domain"
)

// clarifyWordThreshold is the short-input cutoff: unmatched utterances with
// fewer words than this are treated as needing clarification.
const clarifyWordThreshold = 3

// classificationRule pairs a set of compiled patterns with the intent they
// produce. Rules are evaluated in declaration order.
type classificationRule struct {
	intent   domain.Intent
	patterns []*regexp.Regexp
}

// classificationRules is the ordered cascade used by Classify. Greeting rules
// come first: a bare "hi" must classify as a greeting before the short-input
// fallback gets a chance to demand clarification. Greeting patterns are
// anchored to the whole utterance; the rest are substring searches.
var classificationRules = []classificationRule{
	{
		intent: domain.IntentGreeting,
		patterns: compileAll(
			`^hi$`, `^hello$`, `^hey$`, `^hi there$`, `^hello there$`,
			`^greetings$`, `^good morning$`, `^good afternoon$`, `^good evening$`,
			`^how are you\??$`,
		),
	},
	{
		intent: domain.IntentGratitude,
		patterns: compileAll(
			`thank(?:s| you)`, `appreciate it`, `grateful`, `helpful`,
		),
	},
	{
		intent: domain.IntentGoodbye,
		patterns: compileAll(
			`\bbye\b`, `goodbye`, `see you`, `talk to you later`, `^exit$`,
		),
	},
	{
		intent: domain.IntentCapability,
		patterns: compileAll(
			`what can you do`, `help me with`, `capabilities`, `features`, `how do you work`,
		),
	},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// Classify maps raw user text to an intent. It never fails: anything that
// matches no rule and is long enough is a legal query.
func Classify(text string) domain.Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))

	for _, rule := range classificationRules {
		for _, p := range rule.patterns {
			if p.MatchString(normalized) {
				return rule.intent
			}
		}
	}

	if len(strings.Fields(normalized)) < clarifyWordThreshold {
		return domain.IntentClarify
	}
	return domain.IntentLegalQuery
}
