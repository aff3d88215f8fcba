package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "battleboats",
	Short:        "Turn-based naval combat over a websocket relay",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, playCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
