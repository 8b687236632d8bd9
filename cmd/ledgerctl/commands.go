package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"whatsledger/internal/intent"
	"whatsledger/internal/ledger"
	"whatsledger/internal/repository"
	"whatsledger/internal/service"

	"github.com/spf13/cobra"
)

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" || len(password) < 6 {
				return errors.New("--email and --password (min 6 characters) are required")
			}

			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			auth := service.NewAuthService(cfg,
				repository.NewBusinessRepository(db),
				repository.NewAdminRepository(db),
				repository.NewAccessCodeRepository(db))
			admin, created, err := auth.CreateAdmin(name, email, password)
			if err != nil {
				return err
			}
			if !created {
				fmt.Printf("Admin %s already exists (id %d)\n", admin.Email, admin.ID)
				return nil
			}
			fmt.Printf("Created admin %s (id %d)\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().String("name", "Admin", "Display name")
	cmd.Flags().String("email", "", "Login email")
	cmd.Flags().String("password", "", "Login password")

	return cmd
}

func clearDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-data",
		Short: "Delete every payment and customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return errors.New("refusing to delete ledger data without --yes")
			}
			_, db, err := openDB()
			if err != nil {
				return err
			}
			payments, customers, err := repository.NewPaymentRepository(db).DeleteAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear data: %w", err)
			}
			fmt.Printf("Deleted %d payments and %d customers\n", payments, customers)
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Confirm deletion")

	return cmd
}

func fixPhonesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix-customer-phones",
		Short: "Replace a phone number wrongly stored on customers with placeholders",
		Long: `Customers created from provider messages may carry the business's own
WhatsApp number. This gives each of them a fresh placeholder phone.
Defaults to BOTBIZ_PHONE_NUMBER.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			phone, _ := cmd.Flags().GetString("phone")
			if phone == "" {
				phone = cfg.WhatsApp.Botbiz.PhoneNumber
			}
			if phone == "" {
				return errors.New("--phone is required when BOTBIZ_PHONE_NUMBER is not set")
			}
			n, err := repository.NewCustomerRepository(db).ReplacePhone(cmd.Context(), phone, ledger.PlaceholderPhone)
			if err != nil {
				return fmt.Errorf("fix phones: %w", err)
			}
			fmt.Printf("Updated %d customers\n", n)
			return nil
		},
	}

	cmd.Flags().String("phone", "", "Phone number to replace")

	return cmd
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [message]",
		Short: "Print the intent parsed from a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(intent.Classify(strings.Join(args, " ")), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
