package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfg *Config

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "skyduelctl",
		Short: "CLI tool for the duel server line protocol",
		Long: `skyduelctl talks the duel server's colon-delimited line protocol over TCP.

It supports account management, leaderboard and history queries, and a raw
interactive session for driving matches by hand.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "Server address (env: SKYDUEL_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Username, "user", "u", cfg.Username, "Username (env: SKYDUEL_USER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Password, "pass", "p", cfg.Password, "Password (env: SKYDUEL_PASS)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-operation timeout")

	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newDeleteAccountCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newSessionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// connect dials the server
func connect() (*Client, error) {
	return Dial(cfg.ServerAddr, cfg.Timeout)
}

// connectAndLogin dials the server and authenticates with the configured
// credentials
func connectAndLogin() (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("credentials required: set --user/--pass or SKYDUEL_USER/SKYDUEL_PASS")
	}

	client, err := connect()
	if err != nil {
		return nil, err
	}
	if err := client.Login(cfg.Username, cfg.Password); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
