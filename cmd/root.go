package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yahsan2/srs-exporter/pkg/config"
	"github.com/yahsan2/srs-exporter/pkg/credentials"
	"github.com/yahsan2/srs-exporter/pkg/logging"
	"github.com/yahsan2/srs-exporter/pkg/metrics"
	"github.com/yahsan2/srs-exporter/pkg/tfs"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "srs-exporter",
	Short: "Export Epics from Team Foundation Server into SRS documents",
	Long: `A command line tool that reads Epics from a Team Foundation Server or
Azure DevOps collection.

This tool allows you to:
- List the top Epics of a project by rank or by state
- Insert Epic titles into a Word (.docx) SRS template
- Keep the tracker password in the OS keychain
- Export fetch metrics for the node_exporter textfile collector`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Global flags
var (
	configPath  string
	limit       int
	logLevel    string
	logPretty   bool
	metricsFile string
	httpDebug   bool
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: .srs-exporter.yml in current or parent directories)")
	rootCmd.PersistentFlags().IntVarP(&limit, "limit", "L", 0, "Maximum number of work items to fetch (default: query.limit)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", true, "Human-readable logs instead of JSON")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after fetching")
	rootCmd.PersistentFlags().BoolVar(&httpDebug, "debug-http", false, "Dump HTTP requests and responses to stderr")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logging.Setup(logging.Config{
		Level:  level,
		Pretty: logPretty,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// app holds what a fetching command needs
type app struct {
	config   *config.Config
	logger   zerolog.Logger
	recorder *metrics.Recorder
}

// loadApp loads and validates the configuration and applies global flags
func loadApp(component string) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, workitem.NewConfigurationError("failed to load configuration", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, workitem.NewConfigurationError("invalid configuration", err)
	}

	if limit > 0 {
		cfg.Query.Limit = limit
	}
	if metricsFile != "" {
		cfg.Metrics.Textfile = metricsFile
	}

	logger := logging.NewLogger(component)
	logger.Debug().Interface("config", cfg.Redacted()).Msg("configuration loaded")

	return &app{
		config:   cfg,
		logger:   logger,
		recorder: metrics.NewRecorder(),
	}, nil
}

// newFetcher resolves the password and wires the tracker connector into a fetcher
func (a *app) newFetcher() (*workitem.Fetcher, error) {
	password, err := credentials.Resolve(a.config.Connection)
	if err != nil {
		return nil, err
	}

	var httpLog io.Writer
	if httpDebug {
		httpLog = os.Stderr
	}

	connector := tfs.NewConnector(tfs.Options{
		Connection: a.config.Connection,
		Password:   password,
		Logger:     logging.NewLogger("tfs"),
		HTTPLog:    httpLog,
	})

	return workitem.NewFetcher(connector,
		workitem.WithLimit(a.config.Query.Limit),
		workitem.WithLogger(a.logger),
		workitem.WithObserver(a.recorder),
	), nil
}

// newQuery builds the WIQL text for the configured project
func (a *app) newQuery(order workitem.Order, workItemType string) (string, error) {
	builder := workitem.NewQueryBuilder(a.config.Connection.Project, order)
	if workItemType == "" {
		workItemType = a.config.Query.WorkItemType
	}
	if workItemType != "" {
		builder.WorkItemType = workItemType
	}
	return builder.Build()
}

// writeMetrics writes the textfile when one is configured. Failures are logged only.
func (a *app) writeMetrics() {
	path := a.config.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.recorder.WriteTextfile(path); err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("failed to write metrics textfile")
		return
	}
	a.logger.Debug().Str("path", path).Msg("metrics written")
}

func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
