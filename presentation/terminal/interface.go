package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"storefront_e2e/application/scenarios"
	"storefront_e2e/infrastructure/config"
	"storefront_e2e/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// ErrScenariosFailed is returned by the run command when any scenario failed
var ErrScenariosFailed = errors.New("scenarios failed")

type TerminalInterface struct {
	logger     *logrus.Logger
	printer    *Printer
	fs         afero.Fs
	configPath string
	root       *cobra.Command
}

// NewTerminalInterface - creates the command line interface writing to stdout and stderr
func NewTerminalInterface(stdout, stderr io.Writer) *TerminalInterface {
	// Setup logger
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	t := &TerminalInterface{
		logger:  logger,
		printer: NewPrinter(stdout),
		fs:      afero.NewOsFs(),
	}

	root := &cobra.Command{
		Use:   "storefront-e2e",
		Short: "Resilient end-to-end checks for the demo storefront",
		Long: `Runs end-to-end scenarios against a slow storefront.

Configuration is read from an optional YAML file, then from E2E_* environment
variables (a .env file is loaded when present).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&t.configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		t.newRunCmd(),
		t.newListCmd(),
		t.newReportCmd(),
	)
	t.root = root
	return t
}

// Run - executes the command line
func (t *TerminalInterface) Run(ctx context.Context, args []string) error {
	t.root.SetArgs(args)
	return t.root.ExecuteContext(ctx)
}

// loadConfig - loads configuration and applies its log level
func (t *TerminalInterface) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(t.configPath)
	if err != nil {
		return nil, err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	t.logger.SetLevel(level)
	return cfg, nil
}

func (t *TerminalInterface) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t.printer.PrintScenarios(scenarios.All())
			return nil
		},
	}
}

func (t *TerminalInterface) newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the report of the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := t.loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.NewArtifactStore(t.fs, cfg.ArtifactDir)
			if err != nil {
				return err
			}
			report, err := store.LoadReport()
			if err != nil {
				return err
			}
			t.printer.PrintReport(report)
			return nil
		},
	}
}
