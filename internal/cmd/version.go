package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"storebot/internal/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", server.BotName, server.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
