package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/resume-matcher/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List saved runs, or the postings first seen by one run",
	Args:  cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd, map[string]string{"store": "store.path"})
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger, config := setup()

		st, err := openStore(ctx, config)
		if err != nil {
			logger.Fatal("opening the store", zap.Error(err))
		}
		if st == nil {
			logger.Fatal("store is not configured", zap.String("hint", "set store.path or --store"))
		}
		defer st.Close()

		if len(args) == 1 {
			if err := showRun(ctx, st, args[0], logger); err != nil {
				logger.Fatal("showing run", zap.Error(err))
			}
			return
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.Runs(ctx, limit)
		if err != nil {
			logger.Fatal("listing runs", zap.Error(err))
		}

		for _, run := range runs {
			logger.Info(fmt.Sprintf("%s %s", run.ID, run.CreatedAt.Format("2006-01-02 15:04")),
				zap.String("reconciled_title", run.ReconciledTitle),
				zap.Float64("confidence", run.Confidence),
				zap.Int("postings", run.NewPostings),
			)
		}
		logger.Info("listed runs", zap.Int("count", len(runs)))
	},
}

func showRun(ctx context.Context, st *store.Store, id string, logger *zap.Logger) error {
	postings, err := st.RunPostings(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		return fmt.Errorf("%w (list runs with the history command)", err)
	}
	if err != nil {
		return err
	}

	for _, posting := range postings.Items {
		logger.Info(posting.String())
	}
	logger.Info("listed postings", zap.String("run_id", id), zap.Int("count", postings.Len()))
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("store", "", "sqlite file with saved runs")
	historyCmd.Flags().IntP("limit", "n", 20, "number of runs to list, 0 lists all")
}
