package domain

// Intent is the conversational category assigned to a single utterance.
type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentGratitude  Intent = "gratitude"
	IntentGoodbye    Intent = "goodbye"
	IntentCapability Intent = "capability"
	IntentClarify    Intent = "clarification_needed"
	IntentLegalQuery Intent = "legal_query"
)

// Canned reports whether the intent is answered from the response catalog
// rather than the retrieval pipeline.
func (i Intent) Canned() bool {
	switch i {
	case IntentGreeting, IntentGratitude, IntentGoodbye, IntentCapability:
		return true
	}
	return false
}

// Passage is one retrieved index hit: the passage text and its similarity
// score, highest first in any returned slice.
type Passage struct {
	Text  string
	Score float32
}
