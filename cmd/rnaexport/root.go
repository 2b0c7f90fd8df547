package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kerbaras/rnaexport/pkg/app"
	"github.com/kerbaras/rnaexport/pkg/config"
	"github.com/kerbaras/rnaexport/pkg/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// commands that talk to the job service
	annotationNetwork = "network"
	// commands that hand the terminal to the TUI
	annotationTUI = "tui"
)

var (
	envFile     string
	apiDomain   string
	downloadDir string
	dbPath      string
	verbose     bool

	cfg        *config.Config
	logger     *zap.Logger
	controller *services.ExportController
)

var rootCmd = &cobra.Command{
	Use:   "rnaexport",
	Short: "Export RNAcentral search results",
	Long: "Submit RNAcentral search exports, follow their progress and save the results.\n" +
		"Without a subcommand the export history opens in a TUI.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	Annotations:       map[string]string{annotationTUI: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		// Launch TUI by default
		a := app.NewApp(controller)
		if err := a.Run(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file")
	rootCmd.PersistentFlags().StringVar(&apiDomain, "api-domain", "", "Base URL of the export job service (overrides API_DOMAIN)")
	rootCmd.PersistentFlags().StringVar(&downloadDir, "download-dir", "", "Directory finished exports are saved to")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path of the export history database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add all subcommands
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
}

func Execute() {
	err := rootCmd.Execute()
	teardown()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(envFile)
	if err != nil {
		return err
	}

	if apiDomain != "" {
		cfg.APIDomain = apiDomain
	}
	if downloadDir != "" {
		cfg.DownloadDir = downloadDir
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	cfg.Verbose = verbose

	if cmd.Annotations[annotationNetwork] == "true" {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err = newLogger(cfg, usesTUI(cmd))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	controller, err = services.NewExportController(cfg, logger)
	return err
}

func teardown() {
	if controller != nil {
		if err := controller.Close(); err != nil {
			logger.Warn("failed to close job history", zap.Error(err))
		}
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

// usesTUI reports whether the terminal belongs to bubbletea, in which case
// logs must not go to stderr
func usesTUI(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationTUI] == "true" && !plainOutput
}

func newLogger(cfg *config.Config, toFile bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if cfg.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if toFile {
		if cfg.LogFile == "" {
			return zap.NewNop(), nil
		}
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		zcfg.OutputPaths = []string{cfg.LogFile}
		zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	}

	return zcfg.Build()
}
