package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spigell/resume-matcher/internal/listings"
	"github.com/spigell/resume-matcher/internal/matching"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "resume-matcher"
	envPrefix = "RESUME_MATCHER"
)

type Config struct {
	Corpus      string         `mapstructure:"corpus"`
	Resume      string         `mapstructure:"resume"`
	ProfileFile string         `mapstructure:"profile-file"`
	Location    string         `mapstructure:"location"`
	UserAgent   string         `mapstructure:"user-agent"`
	ExcludeFile string         `mapstructure:"exclude-file"`
	Match       *MatchConfig   `mapstructure:"match"`
	Scrape      *ScrapeConfig  `mapstructure:"scrape"`
	Exclude     *ExcludeConfig `mapstructure:"exclude"`
	Store       *StoreConfig   `mapstructure:"store"`
	AI          *AIConfig      `mapstructure:"ai"`
}

type MatchConfig struct {
	TopN          int     `mapstructure:"top-n"`
	MinConfidence float64 `mapstructure:"min-confidence"`
}

type ScrapeConfig struct {
	ListingURL        string        `mapstructure:"listing-url"`
	DetailURL         string        `mapstructure:"detail-url"`
	Start             int           `mapstructure:"start"`
	Concurrency       int           `mapstructure:"concurrency"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max-retries"`
}

type ExcludeConfig struct {
	Companies     []string `mapstructure:"companies"`
	TitleKeywords []string `mapstructure:"title-keywords"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher predicts a job title from a resume and collects matching job postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("corpus", "jobs_new.csv")
	viper.SetDefault("resume", "")
	viper.SetDefault("profile-file", "")
	viper.SetDefault("location", "")
	viper.SetDefault("user-agent", "")
	viper.SetDefault("exclude-file", "")

	viper.SetDefault("match.top-n", matching.DefaultTopN)
	viper.SetDefault("match.min-confidence", matching.DefaultThreshold)

	viper.SetDefault("scrape.listing-url", listings.DefaultListingURL)
	viper.SetDefault("scrape.detail-url", listings.DefaultDetailURL)
	viper.SetDefault("scrape.start", listings.DefaultStart)
	viper.SetDefault("scrape.concurrency", 4)
	viper.SetDefault("scrape.requests-per-second", 2.0)
	viper.SetDefault("scrape.burst", 2)
	viper.SetDefault("scrape.timeout", 10*time.Second)
	viper.SetDefault("scrape.max-retries", 3)

	viper.SetDefault("exclude.companies", []string{})
	viper.SetDefault("exclude.title-keywords", []string{})

	viper.SetDefault("store.path", "")

	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config the defaults and env are enough.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
