package main

import (
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FeelPulse/flightpulse/internal/config"
	"github.com/FeelPulse/flightpulse/internal/metrics"
	"github.com/FeelPulse/flightpulse/internal/sandbox"
	"github.com/FeelPulse/flightpulse/internal/watcher"
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Serve an offline flight vendor for demos and tests",
	Long: `Serves the vendor's search, pricing, order and lookup routes from memory.
Point amadeus.baseUrl at it, or use 'flightpulse run --sandbox' to start one
in-process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("fail-bookings") {
			cfg.Sandbox.FailBookings, _ = cmd.Flags().GetInt("fail-bookings")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := sandbox.New(sandbox.Config{
			ClientID:     cfg.Amadeus.ClientID,
			ClientSecret: cfg.Amadeus.ClientSecret,
			RateLimit:    cfg.Sandbox.RateLimit,
			FailBookings: cfg.Sandbox.FailBookings,
		}, metrics.NewCollector())

		addr := net.JoinHostPort(cfg.Sandbox.Bind, strconv.Itoa(cfg.Sandbox.Port))
		fmt.Printf("📡 Sandbox vendor: http://%s\n", addr)
		fmt.Println("Endpoints:")
		fmt.Println("  POST /v1/security/oauth2/token        - access token")
		fmt.Println("  GET  /v2/shopping/flight-offers       - offer search")
		fmt.Println("  POST /v1/shopping/flight-offers/pricing - price confirmation")
		fmt.Println("  POST /v1/booking/flight-orders        - create order")
		fmt.Println("  GET  /v1/booking/flight-orders/{id}   - order lookup")
		fmt.Println("  GET  /health, /metrics")
		if cfg.Sandbox.FailBookings > 0 {
			fmt.Printf("⏰ The first %d booking(s) fail with a segment sell failure\n", cfg.Sandbox.FailBookings)
		}

		// editing sandbox.failBookings re-arms failures without a restart
		failBookings := cfg.Sandbox.FailBookings
		go watcher.New(cfgFile, 0, func(c *config.Config) {
			if c.Sandbox.FailBookings != failBookings {
				failBookings = c.Sandbox.FailBookings
				srv.FailNextBookings(failBookings)
				log.Info("sandbox will fail the next %d booking(s)", failBookings)
			}
		}).Run(ctx)

		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	sandboxCmd.Flags().Int("fail-bookings", 0, "reject this many initial bookings with a segment sell failure")
}
