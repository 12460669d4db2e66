package usecase

import (
	"context"
	"errors"

	"statute-agent/internal/domain"
)

const msgClarify = "Could you share a few more details? Mention an IPC section number or describe the offence you want to know about."

// DispatchResult is what one handled utterance produces for the caller.
type DispatchResult struct {
	Text           string
	Suggestions    []string
	TypingDuration int
}

// Dispatcher routes each utterance to the response catalog or the retrieval
// pipeline. Requests are independent aside from the shared per-session
// memory, which the registry serializes.
type Dispatcher struct {
	catalog  *Catalog
	answers  *AnswerService
	sessions *SessionRegistry
}

func NewDispatcher(catalog *Catalog, answers *AnswerService, sessions *SessionRegistry) (*Dispatcher, error) {
	if catalog == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if answers == nil {
		return nil, errors.New("usecase: answer service must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("usecase: session registry must not be nil")
	}
	return &Dispatcher{catalog: catalog, answers: answers, sessions: sessions}, nil
}

// Handle classifies the utterance and produces the response for it. Canned
// intents and clarification prompts use a short fixed typing duration;
// substantive queries carry the duration derived from the generated answer.
func (d *Dispatcher) Handle(ctx context.Context, sessionID, utterance string) DispatchResult {
	intent := Classify(utterance)

	if intent.Canned() {
		return DispatchResult{
			Text:           d.catalog.Pick(intent),
			Suggestions:    d.catalog.Suggestions(intent),
			TypingDuration: typingFixedMillis,
		}
	}

	if intent == domain.IntentClarify {
		return DispatchResult{
			Text:           msgClarify,
			Suggestions:    d.catalog.Suggestions(intent),
			TypingDuration: typingFixedMillis,
		}
	}

	var answer domain.Answer
	d.sessions.WithSession(sessionID, func(mem *Memory) {
		answer = d.answers.Answer(ctx, utterance, mem)
	})

	return DispatchResult{
		Text:           answer.Text,
		Suggestions:    d.catalog.QuerySuggestions(utterance),
		TypingDuration: answer.TypingDuration,
	}
}
