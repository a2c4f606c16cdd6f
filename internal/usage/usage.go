// Package usage accounts completion-provider tokens spent on understanding
// flight requests.
package usage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

// Stats is the token and request tally of one provider, or of all of them
type Stats struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	RequestCount int
	// Understood and Rephrased split RequestCount by whether the reply
	// produced search parameters
	Understood   int
	Rephrased    int
	ModelsUsed   map[string]int
	FirstRequest time.Time
	LastRequest  time.Time
}

func newStats() *Stats {
	return &Stats{ModelsUsed: make(map[string]int)}
}

func (s *Stats) clone() *Stats {
	c := *s
	c.ModelsUsed = make(map[string]int, len(s.ModelsUsed))
	for k, v := range s.ModelsUsed {
		c.ModelsUsed[k] = v
	}
	return &c
}

func (s *Stats) add(o *Stats) {
	s.InputTokens += o.InputTokens
	s.OutputTokens += o.OutputTokens
	s.TotalTokens += o.TotalTokens
	s.RequestCount += o.RequestCount
	s.Understood += o.Understood
	s.Rephrased += o.Rephrased
	if s.FirstRequest.IsZero() || (!o.FirstRequest.IsZero() && o.FirstRequest.Before(s.FirstRequest)) {
		s.FirstRequest = o.FirstRequest
	}
	if o.LastRequest.After(s.LastRequest) {
		s.LastRequest = o.LastRequest
	}
	for model, n := range o.ModelsUsed {
		s.ModelsUsed[model] += n
	}
}

// String returns the summary shown by the usage command
func (s *Stats) String() string {
	if s.RequestCount == 0 {
		return "No usage recorded yet."
	}

	var sb strings.Builder
	sb.WriteString("Usage statistics\n")
	sb.WriteString(fmt.Sprintf("  Total tokens: %d\n", s.TotalTokens))
	sb.WriteString(fmt.Sprintf("    input:  %d\n", s.InputTokens))
	sb.WriteString(fmt.Sprintf("    output: %d\n", s.OutputTokens))
	sb.WriteString(fmt.Sprintf("  Flight requests: %d (%d understood, %d rephrased)\n", s.RequestCount, s.Understood, s.Rephrased))
	sb.WriteString(fmt.Sprintf("  Tokens per request: %d\n", s.TotalTokens/s.RequestCount))

	if len(s.ModelsUsed) > 0 {
		models := make([]string, 0, len(s.ModelsUsed))
		for model := range s.ModelsUsed {
			models = append(models, model)
		}
		sort.Strings(models)

		sb.WriteString("  Models:\n")
		for _, model := range models {
			sb.WriteString(fmt.Sprintf("    %s: %d requests\n", model, s.ModelsUsed[model]))
		}
	}

	if !s.FirstRequest.IsZero() && s.LastRequest.After(s.FirstRequest) {
		sb.WriteString(fmt.Sprintf("  Active for: %s\n", formatDuration(s.LastRequest.Sub(s.FirstRequest))))
	}

	return sb.String()
}

// Tracker accumulates Stats per provider. It is safe for concurrent use.
type Tracker struct {
	stats map[string]*Stats
	now   func() time.Time
	mu    sync.RWMutex
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		stats: make(map[string]*Stats),
		now:   time.Now,
	}
}

func (t *Tracker) provider(name string) *Stats {
	s, ok := t.stats[name]
	if !ok {
		s = newStats()
		s.FirstRequest = t.now()
		t.stats[name] = s
	}
	return s
}

// RecordResponse counts the tokens and model of one completion
func (t *Tracker) RecordResponse(resp *types.AgentResponse) {
	if resp == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.provider(resp.Provider)
	s.InputTokens += resp.Usage.InputTokens
	s.OutputTokens += resp.Usage.OutputTokens
	s.TotalTokens += resp.Usage.InputTokens + resp.Usage.OutputTokens
	s.RequestCount++
	s.LastRequest = t.now()
	if resp.Model != "" {
		s.ModelsUsed[resp.Model]++
	}
}

// RecordOutcome notes whether a provider's reply could be turned into a search
func (t *Tracker) RecordOutcome(provider string, understood bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.provider(provider)
	if understood {
		s.Understood++
	} else {
		s.Rephrased++
	}
}

// Provider returns a copy of one provider's stats
func (t *Tracker) Provider(name string) *Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.stats[name]
	if !ok {
		return newStats()
	}
	return s.clone()
}

// Total returns the stats of all providers combined
func (t *Tracker) Total() *Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := newStats()
	for _, s := range t.stats {
		total.add(s)
	}
	return total
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dh", hours)
}
