package main

import (
	"fmt"
	"os"

	"whatsledger/config"
	"whatsledger/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "ledgerctl",
		Short:   "Maintenance commands for the WhatsApp ledger",
		Version: Version,
	}

	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(clearDataCmd())
	rootCmd.AddCommand(fixPhonesCmd())
	rootCmd.AddCommand(classifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB loads the environment config and connects with the same driver as the server.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, db, nil
}
