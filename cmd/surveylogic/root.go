package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/surveylogic"
	"github.com/aretw0/surveylogic/internal/config"
	"github.com/aretw0/surveylogic/internal/logging"
	"github.com/spf13/cobra"
)

var (
	v      = config.New()
	cfg    config.Config
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "surveylogic",
	Short: "Survey conditional logic engine",
	Long: `surveylogic evaluates the conditional logic of surveys: which questions are
visible for an answer set, where navigation goes next and when the survey ends.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = logging.NewWithWriter(os.Stderr, level, logging.Format(cfg.LogFormat))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", "surveys", "Directory containing survey documents")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("store", config.StoreMemory, "Progress store: memory, file, redis or sqlite")
	flags.String("data-dir", ".surveylogic", "Directory for the file and sqlite stores")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis store")

	_ = v.BindPFlag("surveys-dir", flags.Lookup("dir"))
	_ = v.BindPFlag("log-level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log-format", flags.Lookup("log-format"))
	_ = v.BindPFlag("store", flags.Lookup("store"))
	_ = v.BindPFlag("data-dir", flags.Lookup("data-dir"))
	_ = v.BindPFlag("redis-addr", flags.Lookup("redis-addr"))
}

// newEngine builds an engine over the configured survey directory.
func newEngine(opts ...surveylogic.Option) (*surveylogic.Engine, error) {
	base := []surveylogic.Option{surveylogic.WithLogger(logger)}
	engine, err := surveylogic.New(cfg.SurveysDir, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to init engine: %w", err)
	}
	return engine, nil
}
