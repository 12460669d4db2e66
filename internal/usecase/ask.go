package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"statute-agent/internal/domain"
)

const (
	defaultRetrievalK  = 4
	defaultTemperature = 0.5
	defaultMaxTokens   = 200

	minAnswerLength = 10

	typingPerWordMillis = 100
	typingCapMillis     = 3000
	typingFixedMillis   = 500
)

// Fixed user-facing messages. Degenerate or failed exchanges resolve to one
// of these instead of surfacing raw model output or transport errors.
const (
	msgCouldNotUnderstand = "I couldn't understand that. Please try again."
	msgDegenerateAnswer   = "I apologize, but I couldn't generate a proper response. Could you please rephrase your question?"
	msgGenerationIssue    = "I encountered an issue while processing your query. Please try again."
	msgRetrievalTrouble   = "I'm having trouble processing requests right now. Please try again."
)

// Retriever is the similarity search over the passage index.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.Passage, error)
}

// Generator is the hosted completion model.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// AnswerServiceConfig carries the tunables for one deployment. Zero values
// fall back to the defaults above.
type AnswerServiceConfig struct {
	RetrievalK        int
	Temperature       float64
	MaxTokens         int
	PromptTokenBudget int
}

// AnswerService drives one grounded exchange: retrieve, prompt, generate,
// validate, record. External failures never escape as errors; they are
// logged and converted into apologetic answers here.
type AnswerService struct {
	retriever Retriever
	generator Generator
	cfg       AnswerServiceConfig
	logger    *slog.Logger
}

func NewAnswerService(r Retriever, g Generator, cfg AnswerServiceConfig, logger *slog.Logger) (*AnswerService, error) {
	if r == nil {
		return nil, errors.New("usecase: retriever must not be nil")
	}
	if g == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = defaultRetrievalK
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &AnswerService{retriever: r, generator: g, cfg: cfg, logger: logger}, nil
}

// Answer runs the full exchange for a substantive query against the given
// session memory. The memory gains exactly one turn pair on success (both
// turns or neither); failed exchanges leave it untouched.
func (s *AnswerService) Answer(ctx context.Context, query string, mem *Memory) domain.Answer {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Answer{Text: msgCouldNotUnderstand, TypingDuration: typingFixedMillis}
	}

	passages, err := s.retriever.Search(ctx, query, s.cfg.RetrievalK)
	if err != nil {
		s.logger.Error("similarity search failed", "err", newError(ErrorRetrievalUnavailable, "index_search_error", err))
		return domain.Answer{Text: msgRetrievalTrouble, TypingDuration: typingFixedMillis}
	}

	prompt := buildPrompt(query, passages, mem.History(), s.cfg.PromptTokenBudget)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Error("generation failed", "err", newError(ErrorGenerationFailure, "completion_error", err))
		return domain.Answer{Text: msgGenerationIssue, TypingDuration: typingFixedMillis}
	}

	final := strings.TrimSpace(raw)
	if len(final) < minAnswerLength {
		s.logger.Warn("degenerate answer replaced", "length", len(final))
		final = msgDegenerateAnswer
	}

	mem.Append(
		domain.Turn{Role: domain.RoleUser, Text: query},
		domain.Turn{Role: domain.RoleAssistant, Text: final},
	)

	return domain.Answer{Text: final, TypingDuration: typingDuration(final)}
}

// generate calls the completion model, with at most one immediate retry when
// the first attempt fails for a reason other than cancellation.
func (s *AnswerService) generate(ctx context.Context, prompt string) (string, error) {
	raw, err := s.generator.Generate(ctx, prompt, s.cfg.Temperature, s.cfg.MaxTokens)
	if err == nil {
		return raw, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	s.logger.Warn("generation attempt failed, retrying once", "err", err)
	return s.generator.Generate(ctx, prompt, s.cfg.Temperature, s.cfg.MaxTokens)
}

// typingDuration derives the UI pacing hint: word count times a fixed
// per-word delay, capped.
func typingDuration(answer string) int {
	d := len(strings.Fields(answer)) * typingPerWordMillis
	if d > typingCapMillis {
		return typingCapMillis
	}
	return d
}
