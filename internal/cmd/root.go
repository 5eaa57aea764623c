package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storebot/internal/server"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "storebot",
	Short: "CSR2 MODS STORE Telegram bot",
	Long: `storebot runs the CSR2 MODS STORE Telegram storefront.

Customers browse the car catalog and the static item categories, collect
products in a cart and check out. Orders are forwarded to the admin chat.`,
	Version:       server.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./storebot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.SetVersionTemplate("storebot {{.Version}}\n")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
