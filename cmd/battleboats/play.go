package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/client"
	"github.com/calebdsmith/battleboats/internal/config"
)

var playOpts client.Options

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Join a match and play it to the end screen",
	RunE: func(cmd *cobra.Command, args []string) error {
		if playOpts.Code == "" {
			return errors.New("--code is required")
		}
		log, err := newLogger(config.Load().Debug)
		if err != nil {
			return err
		}
		defer log.Sync()

		outcome, err := client.Run(cmd.Context(), playOpts, log)
		if err != nil {
			return err
		}
		log.Info("finished", zap.String("outcome", string(outcome)))
		return nil
	},
}

func init() {
	playCmd.Flags().StringVar(&playOpts.URL, "url", "http://localhost:8080", "server base URL")
	playCmd.Flags().StringVar(&playOpts.Code, "code", "", "six-character match code")
	playCmd.Flags().BoolVar(&playOpts.Begin, "begin", false, "issue the challenge once connected")
	playCmd.Flags().Int64Var(&playOpts.Seed, "seed", 0, "fix boat placement and guessing")
	playCmd.Flags().BoolVar(&playOpts.Report, "report", false, "post the result back to the server")
}
