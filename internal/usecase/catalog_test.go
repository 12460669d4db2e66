package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"statute-agent/internal/domain"
)

func pinned(i int) func(int) int {
	return func(n int) int {
		if i >= n {
			return n - 1
		}
		return i
	}
}

func TestNewCatalog_PoolsNonEmpty(t *testing.T) {
	c, err := NewCatalog(nil)
	require.NoError(t, err)

	for _, intent := range []domain.Intent{
		domain.IntentGreeting, domain.IntentGratitude, domain.IntentGoodbye, domain.IntentCapability,
	} {
		require.NotEmpty(t, c.Pick(intent), "intent %s", intent)
		require.NotEmpty(t, c.Suggestions(intent), "intent %s", intent)
	}
}

func TestPick_DeterministicWithPinnedSource(t *testing.T) {
	first, err := NewCatalog(pinned(0))
	require.NoError(t, err)
	second, err := NewCatalog(pinned(1))
	require.NoError(t, err)

	a := first.Pick(domain.IntentGreeting)
	b := second.Pick(domain.IntentGreeting)
	require.NotEqual(t, a, b)

	// pinned selection is stable across calls
	require.Equal(t, a, first.Pick(domain.IntentGreeting))
}

func TestPick_UnmappedIntentsYieldEmptyString(t *testing.T) {
	c, err := NewCatalog(pinned(0))
	require.NoError(t, err)

	require.Empty(t, c.Pick(domain.IntentLegalQuery))
	require.Empty(t, c.Pick(domain.IntentClarify))
}

func TestQuerySuggestions_KeywordSniffing(t *testing.T) {
	c, err := NewCatalog(pinned(0))
	require.NoError(t, err)

	section := c.QuerySuggestions("What is Section 302?")
	punishment := c.QuerySuggestions("what is the punishment for theft")
	generic := c.QuerySuggestions("explain culpable homicide")

	require.Equal(t, c.suggestions["section"], section)
	require.Equal(t, c.suggestions["punishment"], punishment)
	require.Equal(t, c.suggestions["legal"], generic)

	// "section" takes priority when both keywords appear
	both := c.QuerySuggestions("punishment under section 420")
	require.Equal(t, c.suggestions["section"], both)
}
