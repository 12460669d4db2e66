package usecase

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"statute-agent/internal/domain"
)

const defaultPromptTokenBudget = 1800

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// countTokens measures text with the cl100k_base encoding. If the encoding
// cannot be loaded it falls back to a whitespace word count, which only makes
// the budget more conservative.
func countTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return len(strings.Fields(text))
	}
	return len(encoding.Encode(text, nil, nil))
}

const promptHeader = `[INST] You are a legal expert chatbot specializing in queries related to the Indian Penal Code.
Respond directly to the question based only on the context provided below.
Keep responses short, relevant, and factually accurate.
Do not invent follow-up questions.`

// buildPrompt assembles the grounded generation prompt: instruction header,
// token-budgeted context block, chronological chat history, and the question.
// Passages are taken in the given (score) order; a passage that would blow
// the budget is dropped whole rather than split.
func buildPrompt(question string, passages []domain.Passage, history []domain.Turn, tokenBudget int) string {
	if tokenBudget <= 0 {
		tokenBudget = defaultPromptTokenBudget
	}

	var context strings.Builder
	used := 0
	for _, p := range passages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		n := countTokens(text)
		if used+n > tokenBudget {
			continue
		}
		used += n
		if context.Len() > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString(text)
	}

	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\nContext:\n")
	b.WriteString(context.String())
	if len(history) > 0 {
		b.WriteString("\n\nChat history:\n")
		for _, t := range history {
			b.WriteString(string(t.Role))
			b.WriteString(": ")
			b.WriteString(t.Text)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nResponse: [/INST]")
	return b.String()
}
