package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FeelPulse/flightpulse/internal/collect"
	"github.com/FeelPulse/flightpulse/internal/config"
)

func newSetupPrompter(input string) (*collect.Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return collect.NewPrompter(strings.NewReader(input), out), out
}

func TestRunSetup_WritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	p, out := newSetupPrompter("my-id\nmy-secret\n2\nsk-ant-test\ny\n")

	saved, err := runSetup(p, config.Default(), path)
	if err != nil {
		t.Fatalf("runSetup failed: %v", err)
	}
	if saved != path {
		t.Errorf("saved to %q, want %q", saved, path)
	}
	if strings.Contains(out.String(), "Reconfigure") {
		t.Error("fresh config should not ask to reconfigure")
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Amadeus.ClientID != "my-id" || cfg.Amadeus.ClientSecret != "my-secret" {
		t.Errorf("credentials = %q/%q", cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret)
	}
	if cfg.Agent.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", cfg.Agent.Provider)
	}
	if cfg.Agent.Model != "" {
		t.Errorf("model should reset to the provider default, got %q", cfg.Agent.Model)
	}
	if cfg.Agent.APIKey != "sk-ant-test" {
		t.Errorf("api key = %q", cfg.Agent.APIKey)
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled")
	}
}

func TestRunSetup_BlankKeepsExisting(t *testing.T) {
	cfg := config.Default()
	cfg.Amadeus.ClientID = "old-id"
	cfg.Amadeus.ClientSecret = "old-secret"
	cfg.Agent.APIKey = "old-key"

	path := filepath.Join(t.TempDir(), "config.yaml")
	p, _ := newSetupPrompter("y\n\nnew-secret\n\n\nn\n")

	if _, err := runSetup(p, cfg, path); err != nil {
		t.Fatalf("runSetup failed: %v", err)
	}
	if cfg.Amadeus.ClientID != "old-id" {
		t.Errorf("client id = %q, want old-id", cfg.Amadeus.ClientID)
	}
	if cfg.Amadeus.ClientSecret != "new-secret" {
		t.Errorf("client secret = %q, want new-secret", cfg.Amadeus.ClientSecret)
	}
	if cfg.Agent.Provider != "openai" || cfg.Agent.APIKey != "old-key" {
		t.Errorf("agent = %s/%s", cfg.Agent.Provider, cfg.Agent.APIKey)
	}
	if cfg.History.Enabled {
		t.Error("history should stay disabled")
	}
}

func TestRunSetup_DeclineReconfigure(t *testing.T) {
	cfg := config.Default()
	cfg.Amadeus.ClientID = "id"
	cfg.Agent.APIKey = "key"

	p, _ := newSetupPrompter("n\n")
	_, err := runSetup(p, cfg, filepath.Join(t.TempDir(), "config.yaml"))
	if !errors.Is(err, errSetupCancelled) {
		t.Errorf("expected errSetupCancelled, got %v", err)
	}
}

func TestRunSetup_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"invalid provider", "id\nsecret\n7\n", "invalid choice"},
		{"missing api key", "id\nsecret\n1\n\n", "no API key provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newSetupPrompter(tt.input)
			_, err := runSetup(p, config.Default(), filepath.Join(t.TempDir(), "config.yaml"))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
