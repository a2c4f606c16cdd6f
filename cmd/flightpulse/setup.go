package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FeelPulse/flightpulse/internal/collect"
	"github.com/FeelPulse/flightpulse/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create or update the config file interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			cfg = config.Default()
		}
		p := collect.NewPrompter(os.Stdin, os.Stdout)
		path, err := runSetup(p, cfg, cfgFile)
		if errors.Is(err, errSetupCancelled) {
			p.Say("Setup cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		p.Say("\n✅ Config saved: %s", path)
		p.Say("🚀 Start booking: flightpulse run")
		return nil
	},
}

var errSetupCancelled = errors.New("setup cancelled")

var providers = []string{"openai", "anthropic", "gemini"}

// runSetup walks through credentials and options, then saves cfg to path
func runSetup(p *collect.Prompter, cfg *config.Config, path string) (string, error) {
	p.Say("✈ FlightPulse v%s - Setup\n", version)

	if cfg.Amadeus.ClientID != "" && cfg.Agent.APIKey != "" {
		p.Say("⚠️  Configuration already exists.")
		ok, err := p.Confirm("Reconfigure? [y/N]: ")
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errSetupCancelled
		}
		p.Say("")
	}

	p.Say("Amadeus Self-Service credentials (https://developers.amadeus.com), blank keeps the current value")
	if err := askKeep(p, "  Client ID: ", &cfg.Amadeus.ClientID); err != nil {
		return "", err
	}
	if err := askKeep(p, "  Client secret: ", &cfg.Amadeus.ClientSecret); err != nil {
		return "", err
	}

	p.Say("\nChoose the completion provider:")
	for i, name := range providers {
		p.Say("  %d) %s", i+1, name)
	}
	choice, err := p.Ask("\nChoice [1/2/3]: ")
	if err != nil {
		return "", err
	}
	switch choice {
	case "", "1":
		cfg.Agent.Provider = "openai"
	case "2":
		cfg.Agent.Provider = "anthropic"
	case "3":
		cfg.Agent.Provider = "gemini"
	default:
		return "", fmt.Errorf("invalid choice %q", choice)
	}
	cfg.Agent.Model = ""

	if err := askKeep(p, fmt.Sprintf("Paste %s API key: ", cfg.Agent.Provider), &cfg.Agent.APIKey); err != nil {
		return "", err
	}
	if cfg.Agent.APIKey == "" {
		return "", errors.New("no API key provided")
	}

	keep, err := p.Confirm("\nKeep a local history of searches and bookings? [y/N]: ")
	if err != nil {
		return "", err
	}
	cfg.History.Enabled = keep

	if result := cfg.Validate(); !result.IsValid() {
		for _, e := range result.Errors {
			p.Say("⚠️  %s", e)
		}
	}

	return config.Save(cfg, path)
}

// askKeep stores a non-empty answer in dst
func askKeep(p *collect.Prompter, label string, dst *string) error {
	answer, err := p.Ask(label)
	if err != nil {
		return err
	}
	if answer != "" {
		*dst = answer
	}
	return nil
}
