package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Predict a job title for a resume without collecting postings",
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd, inputFlags)
	},
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger, config := setup()

		p, err := loadProfile(ctx, config, logger)
		if err != nil {
			logger.Fatal("loading the candidate profile", zap.Error(err))
		}

		result, err := matchProfile(config, p, logger)
		if err != nil {
			logger.Fatal("matching the profile", zap.Error(err))
		}

		pretty, _ := json.MarshalIndent(struct {
			Profile any `json:"profile"`
			Result  any `json:"result"`
		}{Profile: p, Result: result}, "", "  ")
		logger.Info(string(pretty))
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	addInputFlags(matchCmd)
}
