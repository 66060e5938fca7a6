package refine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"

	instruction = "You are a prompt refiner. Use advanced prompt engineering techniques to refine the user's prompt: "
	maxTokens   = 150
)

// Completer sends a prompt to a completion model and returns the candidate texts.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) ([]string, error)
}

// Response carries the original prompt, the refined prompt and the outcome.
type Response struct {
	OriginalPrompt   string `json:"original_prompt"`
	RefinedPrompt    string `json:"refined_prompt"`
	RefinementStatus string `json:"refinement_status"`
}

// Service wraps prompts in the refinement instruction and normalizes the model output.
type Service struct {
	completer Completer
	logger    *zap.SugaredLogger
}

func NewService(c Completer, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{completer: c, logger: logger}
}

// Refine never returns an error; failures are described in RefinementStatus.
func (s *Service) Refine(ctx context.Context, prompt string) Response {
	candidates, err := s.completer.Complete(ctx, instruction+prompt, maxTokens)
	if err != nil {
		s.logger.Warnw("prompt refinement failed", "err", err)
		return Response{
			OriginalPrompt:   prompt,
			RefinedPrompt:    "",
			RefinementStatus: fmt.Sprintf("FAILED due to an internal error: %v", err),
		}
	}
	refined := ""
	if len(candidates) > 0 {
		refined = strings.TrimSpace(candidates[0])
	}
	status := StatusCompleted
	if refined == "" {
		status = StatusFailed
	}
	return Response{OriginalPrompt: prompt, RefinedPrompt: refined, RefinementStatus: status}
}
