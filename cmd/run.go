package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spigell/resume-matcher/internal/listings"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptSave                = "Save run to store"
	PromptShowPostings        = "Show postings"
	PromptReportByCompanies   = "Report by companies"
	PromptPostingsToFile      = "Dump postings to file"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
	PromptExit                = "Exit"
)

var prompt = promptui.Select{
	Label: "Next action",
	Items: []string{PromptSave, PromptShowPostings, PromptReportByCompanies, PromptPostingsToFile, PromptAppendToExcludeFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read a resume, predict a job title and collect matching postings",
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd, inputFlags, map[string]string{"exclude-file": "exclude-file", "store": "store.path"})
	},
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	addInputFlags(runCmd)
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for an action; save the run and exit")
	runCmd.Flags().Bool("include-seen", false, "keep postings already saved by earlier runs")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")
	runCmd.Flags().String("store", "", "sqlite file to save runs to. Default is unset.")
}

// inputFlags maps the flags shared by commands that read a resume to config keys.
var inputFlags = map[string]string{
	"resume":       "resume",
	"profile-file": "profile-file",
	"corpus":       "corpus",
	"location":     "location",
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("resume", "r", "", "resume file (pdf, docx or text)")
	cmd.Flags().StringP("profile-file", "p", "", "stored model response to use instead of the resume")
	cmd.Flags().StringP("corpus", "c", "", "job title corpus csv")
	cmd.Flags().StringP("location", "l", "", "location to search postings in")
}

// bindFlags binds the flags of the command being executed to their config
// keys. Binding happens here and not in init because several commands share
// flag names and viper keeps only the last binding of a key.
func bindFlags(cmd *cobra.Command, bindings ...map[string]string) {
	for _, binding := range bindings {
		for flag, key := range binding {
			if f := cmd.Flags().Lookup(flag); f != nil {
				viper.BindPFlag(key, f)
			}
		}
	}
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()

	st, err := openStore(ctx, config)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	if st != nil {
		defer st.Close()
	}

	p, err := loadProfile(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading the candidate profile", zap.Error(err))
	}

	result, err := matchProfile(config, p, logger)
	if err != nil {
		logger.Fatal("matching the profile", zap.Error(err))
	}

	scraped, err := scrapePostings(ctx, config, result.ReconciledTitle, logger)
	if err != nil {
		logger.Fatal("getting postings", zap.Error(err))
	}

	includeSeen, _ := cmd.Flags().GetBool("include-seen")
	postings, err := filterPostings(ctx, config, st, includeSeen, scraped.Postings, logger)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	s := &session{
		config:   config,
		logger:   logger,
		store:    st,
		profile:  p,
		result:   result,
		postings: postings,
	}

	for {
		action := PromptSave
		if !autoApprove {
			var err error
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of postings", zap.Int("count", postings.Len()))

		if err := s.handleAction(ctx, action); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove || action == PromptExit {
			return
		}
	}
}

// setup builds the logger and reads the config, exiting on failure.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the "+app, zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

// redacted returns a copy of the config without inline secrets.
func redacted(config *Config) *Config {
	out := *config
	if config.AI != nil && config.AI.Gemini != nil {
		gemini := *config.AI.Gemini
		if gemini.APIKey != "" {
			gemini.APIKey = "***"
		}
		out.AI = &AIConfig{Gemini: &gemini}
	}
	return &out
}

type session struct {
	config   *Config
	logger   *zap.Logger
	store    *store.Store
	profile  *profile.Profile
	result   *matching.Result
	postings *listings.Postings
	saved    bool
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptSave:
		return s.save(ctx)
	case PromptShowPostings:
		for _, posting := range s.postings.Items {
			s.logger.Info(posting.String())
		}
		return nil
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(s.postings.ReportByCompany(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("postings count", s.postings.Len()))
		return nil
	case PromptPostingsToFile:
		filename, err := s.postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return s.appendToExcludeFile()
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) save(ctx context.Context) error {
	if s.store == nil {
		s.logger.Warn("skipping save", zap.String("reason", "store is not configured"), zap.String("hint", "set store.path or --store"))
		return nil
	}
	if s.saved {
		s.logger.Info("run is already saved")
		return nil
	}

	run, err := s.store.SaveRun(ctx, store.RunInput{
		Location: s.config.Location,
		Result:   s.result,
		Profile:  s.profile,
		Postings: s.postings,
	})
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	s.saved = true

	s.logger.Info("saved run",
		zap.String("run_id", run.ID),
		zap.Int("new_postings", run.NewPostings),
	)
	return nil
}

func (s *session) appendToExcludeFile() error {
	path := strings.TrimSpace(s.config.ExcludeFile)
	if path == "" {
		return errors.New("exclude file is not configured")
	}

	excluded, err := listings.GetExcludedPostingsFromFile(path)
	if err != nil {
		return fmt.Errorf("reading exclude file: %w", err)
	}

	before := len(excluded.Items)
	excluded.Append(s.postings.ToExcluded())
	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("writing exclude file: %w", err)
	}

	s.logger.Info("appended postings to exclude file",
		zap.String("path", path),
		zap.Int("added", len(excluded.Items)-before),
	)
	return nil
}
