package usecase

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"gopkg.in/yaml.v3"

	"statute-agent/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// catalogFile is the on-disk shape of the embedded catalog document.
type catalogFile struct {
	Responses   map[string][]string `yaml:"responses"`
	Suggestions map[string][]string `yaml:"suggestions"`
}

// Catalog holds the canned reply pools and suggestion lists keyed by intent.
// Selection within a pool is uniform-random via the injected pickIndex so
// tests can pin it.
type Catalog struct {
	responses   map[domain.Intent][]string
	suggestions map[string][]string
	pickIndex   func(n int) int
}

// NewCatalog parses the embedded catalog document. The pick function chooses
// an index in [0,n); pass nil for math/rand selection.
func NewCatalog(pick func(n int) int) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse embedded document: %w", err)
	}

	responses := map[domain.Intent][]string{
		domain.IntentGreeting:   file.Responses["greeting"],
		domain.IntentGratitude:  file.Responses["gratitude"],
		domain.IntentGoodbye:    file.Responses["goodbye"],
		domain.IntentCapability: file.Responses["capability"],
	}
	for intent, pool := range responses {
		if len(pool) == 0 {
			return nil, fmt.Errorf("catalog: empty response pool for intent %q", intent)
		}
	}

	for _, key := range []string{"greeting", "gratitude", "goodbye", "capability", "clarification", "section", "punishment", "legal"} {
		if len(file.Suggestions[key]) == 0 {
			return nil, errors.New("catalog: missing suggestion set " + key)
		}
	}

	if pick == nil {
		pick = rand.Intn
	}
	return &Catalog{
		responses:   responses,
		suggestions: file.Suggestions,
		pickIndex:   pick,
	}, nil
}

// Pick returns a canned reply for a non-substantive intent. Intents without a
// pool (legal queries, clarification) yield the empty string; callers are
// expected not to ask for those.
func (c *Catalog) Pick(intent domain.Intent) string {
	pool := c.responses[intent]
	if len(pool) == 0 {
		return ""
	}
	return pool[c.pickIndex(len(pool))]
}

// Suggestions returns the fixed suggestion list for a canned intent.
func (c *Catalog) Suggestions(intent domain.Intent) []string {
	switch intent {
	case domain.IntentGreeting:
		return c.suggestions["greeting"]
	case domain.IntentGratitude:
		return c.suggestions["gratitude"]
	case domain.IntentGoodbye:
		return c.suggestions["goodbye"]
	case domain.IntentCapability:
		return c.suggestions["capability"]
	default:
		return c.suggestions["clarification"]
	}
}

// QuerySuggestions picks the suggestion set for a substantive query by light
// keyword sniffing: "section" wins over "punishment", anything else gets the
// generic legal set.
func (c *Catalog) QuerySuggestions(query string) []string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "section"):
		return c.suggestions["section"]
	case strings.Contains(q, "punishment"):
		return c.suggestions["punishment"]
	default:
		return c.suggestions["legal"]
	}
}
