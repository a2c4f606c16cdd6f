package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FeelPulse/flightpulse/internal/agent"
	"github.com/FeelPulse/flightpulse/internal/amadeus"
	"github.com/FeelPulse/flightpulse/internal/booking"
	"github.com/FeelPulse/flightpulse/internal/collect"
	"github.com/FeelPulse/flightpulse/internal/config"
	"github.com/FeelPulse/flightpulse/internal/logger"
	"github.com/FeelPulse/flightpulse/internal/metrics"
	"github.com/FeelPulse/flightpulse/internal/parser"
	"github.com/FeelPulse/flightpulse/internal/sandbox"
	"github.com/FeelPulse/flightpulse/internal/store"
	"github.com/FeelPulse/flightpulse/internal/ui"
	"github.com/FeelPulse/flightpulse/internal/usage"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

var log = logger.Component("main")

var useSandbox bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive booking loop (default)",
	Args:  cobra.NoArgs,
	RunE:  runInteractive,
}

var checkCmd = &cobra.Command{
	Use:   "check <flight-order-id>",
	Short: "Show the details of an existing booking",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().BoolVar(&useSandbox, "sandbox", false, "use an in-process sandbox vendor instead of the configured API")
	}
}

// startEmbeddedSandbox serves a sandbox on a free local port and points cfg at it
func startEmbeddedSandbox(ctx context.Context, cfg *config.Config, m *metrics.Collector) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start sandbox: %w", err)
	}
	if cfg.Amadeus.ClientID == "" {
		cfg.Amadeus.ClientID = "sandbox"
	}
	if cfg.Amadeus.ClientSecret == "" {
		cfg.Amadeus.ClientSecret = "sandbox"
	}
	cfg.Amadeus.BaseURL = "http://" + ln.Addr().String()

	srv := sandbox.New(sandbox.Config{
		ClientID:     cfg.Amadeus.ClientID,
		ClientSecret: cfg.Amadeus.ClientSecret,
		FailBookings: cfg.Sandbox.FailBookings,
	}, m)
	go func() {
		if err := srv.Serve(ctx, ln); err != nil {
			log.Error("embedded sandbox stopped: %v", err)
		}
	}()
	return nil
}

func newGateway(cfg *config.Config) *amadeus.Client {
	return amadeus.New(amadeus.Config{
		ClientID:     cfg.Amadeus.ClientID,
		ClientSecret: cfg.Amadeus.ClientSecret,
		BaseURL:      cfg.Amadeus.BaseURL,
		Timeout:      time.Duration(cfg.Amadeus.TimeoutSeconds) * time.Second,
		MaxOffers:    cfg.Booking.MaxOffers,
	})
}

// serveMetrics exposes the collector until ctx is done
func serveMetrics(ctx context.Context, addr string, m *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info("metrics on http://%s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := metrics.NewCollector()
	if useSandbox {
		if err := startEmbeddedSandbox(ctx, cfg, m); err != nil {
			return err
		}
	}
	if err := requireValid(cfg); err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		serveMetrics(ctx, cfg.Metrics.Addr, m)
	}

	tracker := usage.NewTracker()
	completer, err := agent.NewFromConfig(ctx, &cfg.Agent)
	if err != nil {
		return fmt.Errorf("completion provider: %w", err)
	}
	observed := agent.Observe(completer, func(resp *types.AgentResponse) {
		m.AddTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	})
	log.Info("completion provider: %s", observed.Name())

	p := parser.New(observed, cfg.Agent.MaxTokens)
	p.SetUsageTracker(tracker)

	var history booking.History
	if cfg.History.Enabled {
		db, err := store.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer db.Close()
		history = db
	}

	prompter := collect.NewPrompter(os.Stdin, os.Stdout)
	orch := booking.New(booking.Deps{
		Parser:    p,
		Gateway:   newGateway(cfg),
		Collector: collect.New(prompter, cfg.Profile),
		Input:     prompter,
		UI:        ui.New(os.Stdout),
		History:   history,
		Metrics:   m,
		Usage:     tracker,
	}, booking.Config{
		RetryDelay: time.Duration(cfg.Booking.RetryDelaySeconds) * time.Second,
		TopOptions: cfg.Booking.TopOptions,
	})
	return orch.Run(ctx)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Amadeus.ClientID == "" || cfg.Amadeus.ClientSecret == "" {
		return errors.New("amadeus credentials required: set amadeus.clientId and amadeus.clientSecret")
	}

	var history booking.History
	if cfg.History.Enabled {
		db, err := store.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			log.Warn("history unavailable: %v", err)
		} else {
			defer db.Close()
			history = db
		}
	}

	orch := booking.New(booking.Deps{
		Gateway: newGateway(cfg),
		UI:      ui.New(os.Stdout),
		History: history,
	}, booking.Config{})
	if orch.Handle(cmd.Context(), "check "+args[0]) != booking.Verified {
		return fmt.Errorf("booking %s could not be verified", args[0])
	}
	return nil
}
