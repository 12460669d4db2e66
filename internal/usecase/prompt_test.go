package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"statute-agent/internal/domain"
)

func TestBuildPrompt_ContainsContextHistoryAndQuestion(t *testing.T) {
	passages := []domain.Passage{
		{Text: "Section 302. Punishment for murder.", Score: 0.9},
		{Text: "Section 300. Murder.", Score: 0.8},
	}
	history := []domain.Turn{
		{Role: domain.RoleUser, Text: "What is Section 300?"},
		{Role: domain.RoleAssistant, Text: "Section 300 defines murder."},
	}

	prompt := buildPrompt("What is Section 302?", passages, history, 0)

	require.Contains(t, prompt, "Section 302. Punishment for murder.")
	require.Contains(t, prompt, "Section 300. Murder.")
	require.Contains(t, prompt, "user: What is Section 300?")
	require.Contains(t, prompt, "assistant: Section 300 defines murder.")
	require.Contains(t, prompt, "Question: What is Section 302?")
	require.True(t, strings.HasSuffix(prompt, "Response: [/INST]"))

	// passages preserve score order
	require.Less(t,
		strings.Index(prompt, "Section 302. Punishment for murder."),
		strings.Index(prompt, "Section 300. Murder."),
	)
}

func TestBuildPrompt_NoHistoryBlockWhenEmpty(t *testing.T) {
	prompt := buildPrompt("What is Section 302?", nil, nil, 0)
	require.NotContains(t, prompt, "Chat history:")
}

func TestBuildPrompt_TokenBudgetDropsWholePassages(t *testing.T) {
	passages := []domain.Passage{
		{Text: "Section 302 of the Indian Penal Code prescribes the punishment for murder in detail.", Score: 0.9},
		{Text: "Section 300 of the Indian Penal Code defines the offence of murder and its exceptions.", Score: 0.8},
	}

	prompt := buildPrompt("question", passages, nil, 1)
	require.NotContains(t, prompt, "Section 302 of the Indian Penal Code")
	require.NotContains(t, prompt, "Section 300 of the Indian Penal Code")

	prompt = buildPrompt("question", passages, nil, 100000)
	require.Contains(t, prompt, "Section 302 of the Indian Penal Code")
	require.Contains(t, prompt, "Section 300 of the Indian Penal Code")
}

func TestBuildPrompt_SkipsBlankPassages(t *testing.T) {
	passages := []domain.Passage{
		{Text: "   ", Score: 0.9},
		{Text: "Section 378. Theft.", Score: 0.8},
	}
	prompt := buildPrompt("what is theft", passages, nil, 0)
	require.Contains(t, prompt, "Section 378. Theft.")
}
