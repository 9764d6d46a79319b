package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Username == "" || cfg.Password == "" {
				return fmt.Errorf("credentials required: set --user and --pass")
			}

			client, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.Register(cfg.Username, email, cfg.Password); err != nil {
				return err
			}

			fmt.Printf("Registered %s\n", cfg.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newDeleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-account",
		Short: "Delete the account and its credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectAndLogin()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.DeleteAccount(); err != nil {
				return err
			}

			fmt.Printf("Deleted %s\n", cfg.Username)
			return nil
		},
	}
}
