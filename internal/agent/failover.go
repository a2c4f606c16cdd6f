package agent

import (
	"context"
	"fmt"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

// FailoverAgent wraps two providers and falls back to the second if the first fails
type FailoverAgent struct {
	primary  Completer
	fallback Completer
}

// NewFailoverAgent creates a new failover agent
func NewFailoverAgent(primary, fallback Completer) *FailoverAgent {
	return &FailoverAgent{
		primary:  primary,
		fallback: fallback,
	}
}

// Name returns the agent name
func (f *FailoverAgent) Name() string {
	return fmt.Sprintf("%s (with fallback: %s)", f.primary.Name(), f.fallback.Name())
}

// Complete asks the primary provider, falling back if it fails
func (f *FailoverAgent) Complete(ctx context.Context, req CompletionRequest) (*types.AgentResponse, error) {
	resp, err := f.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	if ctx.Err() != nil {
		return nil, err
	}

	log.Warn("primary provider (%s) failed: %v, trying fallback (%s)", f.primary.Name(), err, f.fallback.Name())

	resp, err = f.fallback.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("both primary and fallback failed: %w", err)
	}

	return resp, nil
}
