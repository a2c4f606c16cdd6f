// Package parser turns a free-text travel request into SearchParams using a
// text-completion provider.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/FeelPulse/flightpulse/internal/agent"
	"github.com/FeelPulse/flightpulse/internal/logger"
	"github.com/FeelPulse/flightpulse/internal/usage"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

const defaultMaxTokens = 300

// ErrUnparseable means the provider replied but no usable request could be read from it
var ErrUnparseable = errors.New("could not understand the request")

// first '{' to last '}', across lines
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

var log = logger.Component("parser")

// Parser extracts search parameters from natural language
type Parser struct {
	completer agent.Completer
	maxTokens int
	now       func() time.Time
	usage     *usage.Tracker
}

// New creates a parser over completer. maxTokens <= 0 uses 300.
func New(completer agent.Completer, maxTokens int) *Parser {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Parser{
		completer: completer,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

// SetClock overrides the date injected into the prompt
func (p *Parser) SetClock(now func() time.Time) {
	p.now = now
}

// SetUsageTracker records token usage and outcome of every completion
func (p *Parser) SetUsageTracker(t *usage.Tracker) {
	p.usage = t
}

// reply mirrors the JSON the provider is asked for; every field may be null
type reply struct {
	Origin            *string  `json:"origin"`
	Destination       *string  `json:"destination"`
	DepartureDate     *string  `json:"departure_date"`
	ReturnDate        *string  `json:"return_date"`
	Adults            *int     `json:"adults"`
	Children          *int     `json:"children"`
	Infants           *int     `json:"infants"`
	Budget            *float64 `json:"budget"`
	Currency          *string  `json:"currency"`
	NonStop           *bool    `json:"non_stop"`
	PreferredAirlines []string `json:"preferred_airlines"`
	AvoidedAirlines   []string `json:"avoided_airlines"`
}

// Parse sends text to the provider once and decodes its reply.
// Provider failures are returned wrapped; a reply without a usable JSON
// object or without origin, destination and departure date wraps ErrUnparseable.
func (p *Parser) Parse(ctx context.Context, text string) (*types.SearchParams, error) {
	prompt, err := buildPrompt(text, p.now())
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := p.completer.Complete(ctx, agent.CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   p.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	if p.usage != nil {
		p.usage.RecordResponse(resp)
	}

	log.Debug("provider %s replied: %s", resp.Provider, resp.Text)
	params, err := decode(resp.Text)
	if p.usage != nil {
		p.usage.RecordOutcome(resp.Provider, err == nil)
	}
	return params, err
}

func decode(content string) (*types.SearchParams, error) {
	content = strings.TrimSpace(content)
	raw := jsonBlock.FindString(content)
	if raw == "" {
		raw = content
	}

	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	params := &types.SearchParams{
		Origin:            code(r.Origin),
		Destination:       code(r.Destination),
		DepartureDate:     str(r.DepartureDate),
		ReturnDate:        str(r.ReturnDate),
		Adults:            1,
		Budget:            r.Budget,
		Currency:          code(r.Currency),
		PreferredAirlines: codes(r.PreferredAirlines),
		AvoidedAirlines:   codes(r.AvoidedAirlines),
	}
	if r.Adults != nil && *r.Adults > 0 {
		params.Adults = *r.Adults
	}
	if r.Children != nil && *r.Children > 0 {
		params.Children = *r.Children
	}
	if r.Infants != nil && *r.Infants > 0 {
		params.Infants = *r.Infants
	}
	if r.NonStop != nil {
		params.NonStop = *r.NonStop
	}
	if params.Budget != nil && *params.Budget <= 0 {
		params.Budget = nil
	}

	if err := validate(params); err != nil {
		return nil, err
	}
	return params, nil
}

func validate(p *types.SearchParams) error {
	var missing []string
	if p.Origin == "" {
		missing = append(missing, "origin")
	}
	if p.Destination == "" {
		missing = append(missing, "destination")
	}
	if p.DepartureDate == "" {
		missing = append(missing, "departure date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrUnparseable, strings.Join(missing, ", "))
	}

	if _, err := time.Parse("2006-01-02", p.DepartureDate); err != nil {
		return fmt.Errorf("%w: departure date %q is not YYYY-MM-DD", ErrUnparseable, p.DepartureDate)
	}
	if p.ReturnDate != "" {
		if _, err := time.Parse("2006-01-02", p.ReturnDate); err != nil {
			return fmt.Errorf("%w: return date %q is not YYYY-MM-DD", ErrUnparseable, p.ReturnDate)
		}
	}
	return nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func code(s *string) string {
	return strings.ToUpper(str(s))
}

func codes(in []string) []string {
	var out []string
	for _, c := range in {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}
