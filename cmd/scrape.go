package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect postings for a job title without reading a resume",
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd, map[string]string{"location": "location", "exclude-file": "exclude-file"})
	},
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger, config := setup()

		title, _ := cmd.Flags().GetString("title")
		if title = strings.TrimSpace(title); title == "" {
			logger.Fatal("job title is required", zap.String("hint", "pass --title"))
		}

		scraped, err := scrapePostings(ctx, config, title, logger)
		if err != nil {
			logger.Fatal("getting postings", zap.Error(err))
		}

		postings, err := filterPostings(ctx, config, nil, true, scraped.Postings, logger)
		if err != nil {
			logger.Fatal("filtering failed", zap.Error(err))
		}

		for _, posting := range postings.Items {
			logger.Info(posting.String())
		}

		if dump, _ := cmd.Flags().GetBool("dump"); dump && postings.Len() > 0 {
			filename, err := postings.DumpToTmpFile()
			if err != nil {
				logger.Fatal("dump results to file", zap.Error(err))
			}
			logger.Info("dumping result to file", zap.String("filename", filename))
		}

		if err := scraped.Err(); err != nil {
			logger.Warn("some fetches failed", zap.Int("failures", len(scraped.Failures)), zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringP("title", "t", "", "job title to search postings for")
	scrapeCmd.Flags().StringP("location", "l", "", "location to search postings in")
	scrapeCmd.Flags().StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")
	scrapeCmd.Flags().Bool("dump", false, "dump postings to a temporary json file")
}
