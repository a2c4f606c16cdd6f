package agent

import (
	"context"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

// ObservedCompleter reports every successful response to a callback
type ObservedCompleter struct {
	inner   Completer
	observe func(*types.AgentResponse)
}

// Observe wraps c so fn sees each response before it is returned
func Observe(c Completer, fn func(*types.AgentResponse)) *ObservedCompleter {
	return &ObservedCompleter{inner: c, observe: fn}
}

// Name returns the wrapped provider's name
func (o *ObservedCompleter) Name() string {
	return o.inner.Name()
}

// Complete delegates to the wrapped provider
func (o *ObservedCompleter) Complete(ctx context.Context, req CompletionRequest) (*types.AgentResponse, error) {
	resp, err := o.inner.Complete(ctx, req)
	if err == nil && resp != nil && o.observe != nil {
		o.observe(resp)
	}
	return resp, err
}
