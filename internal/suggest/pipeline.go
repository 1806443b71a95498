package suggest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"caretaker/internal/service"
)

// ErrEmptyPrompt is returned when the user prompt is blank.
var ErrEmptyPrompt = errors.New("prompt required")

// maxLoggedReply bounds how much of an unparsable reply is written to the debug log.
const maxLoggedReply = 512

// Pipeline runs build, generate, parse and aggregate as one call.
type Pipeline struct {
	gen service.Generator
	log zerolog.Logger
}

// NewPipeline creates a pipeline that sends prompts to gen.
func NewPipeline(gen service.Generator, log zerolog.Logger) *Pipeline {
	return &Pipeline{gen: gen, log: log}
}

// Run asks the provider about tasks and returns the bucketed suggestions.
// Errors are *service.NetworkError, *ParseError, service.ErrNoSuggestion or
// ErrEmptyPrompt; callers treat all of them as "no suggestion available".
func (p *Pipeline) Run(ctx context.Context, tasks []service.Task, userPrompt string, shape Shape, today time.Time) (Result, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, ErrEmptyPrompt
	}

	req := BuildRequest(tasks, userPrompt, shape)
	p.log.Debug().
		Int("tasks", len(tasks)).
		Int("prompt_bytes", len(req.Prompt)).
		Msg("requesting suggestions")

	reply, err := p.gen.Generate(ctx, req.Prompt)
	if err != nil {
		if errors.Is(err, service.ErrNoSuggestion) {
			p.log.Info().Msg("provider returned no candidate")
		} else {
			p.log.Warn().Err(err).Msg("suggestion request failed")
		}
		return nil, err
	}

	suggestions, err := Parse(reply)
	if err != nil {
		p.log.Warn().Err(err).Msg("discarding unparsable suggestion reply")
		p.log.Debug().Str("reply", truncate(reply, maxLoggedReply)).Msg("raw reply")
		return nil, err
	}

	result := Aggregate(suggestions, today)
	p.log.Debug().
		Int("suggestions", len(result)).
		Int("tasks", result.TaskCount()).
		Msg("suggestions ready")
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
