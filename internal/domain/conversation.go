package domain

// Role tags a conversation turn as user- or assistant-authored.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single role-tagged message. Turns are immutable once created.
type Turn struct {
	Role Role
	Text string
}

// Answer is the result of one exchange: the final response text plus the
// UI pacing hint derived from it. Not persisted.
type Answer struct {
	Text           string
	TypingDuration int // milliseconds
}
