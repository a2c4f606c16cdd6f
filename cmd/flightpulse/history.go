package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FeelPulse/flightpulse/internal/store"
	"github.com/FeelPulse/flightpulse/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches and bookings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfg.History.Path); os.IsNotExist(err) {
			fmt.Println("No history yet. Enable it with history.enabled: true in the config.")
			return nil
		}

		db, err := store.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer db.Close()

		searches, err := db.RecentSearches(historyLimit)
		if err != nil {
			return err
		}
		bookings, err := db.RecentBookings(historyLimit)
		if err != nil {
			return err
		}
		ui.New(os.Stdout).History(searches, bookings)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of rows per section")
}
