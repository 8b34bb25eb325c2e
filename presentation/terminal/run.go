package terminal

import (
	"storefront_e2e/application/runner"
	"storefront_e2e/application/scenarios"
	"storefront_e2e/domain/interfaces"
	"storefront_e2e/infrastructure/browser"
	"storefront_e2e/infrastructure/config"
	"storefront_e2e/infrastructure/security"
	"storefront_e2e/infrastructure/storage"

	"github.com/spf13/cobra"
)

type runFlags struct {
	grep     []string
	projects []string
	workers  int
	retries  int
	engine   string
	headed   bool
}

// apply overrides cfg with the flags the user set
func (f runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("project") {
		cfg.Projects = f.projects
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("retries") {
		cfg.Retries = f.retries
	}
	if flags.Changed("engine") {
		cfg.Engine = config.Engine(f.engine)
	}
	if f.headed {
		cfg.Headless = false
	}
	return cfg.Validate()
}

func (t *TerminalInterface) newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the storefront scenarios",
		Example: `  storefront-e2e run
  storefront-e2e run --grep cart --project chromium --project firefox --headed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := t.loadConfig()
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}

			selected, err := scenarios.Select(scenarios.All(), f.grep)
			if err != nil {
				return err
			}

			store, err := storage.NewArtifactStore(t.fs, cfg.ArtifactDir)
			if err != nil {
				return err
			}

			var guard interfaces.ActionGuard
			if cfg.Guard {
				guard = security.NewGuard(t.logger)
			}

			launch := func(project string) (interfaces.Browser, error) {
				return browser.Launch(browser.Engine(cfg.Engine), BrowserOptions(cfg, project), t.logger)
			}

			r := runner.New(RunnerSettings(cfg), launch, store, guard, t.logger)
			report, runErr := r.Run(cmd.Context(), selected)
			t.printer.PrintReport(report)
			if runErr != nil {
				return runErr
			}
			if !report.Passed() {
				return ErrScenariosFailed
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&f.grep, "grep", "g", nil, "only run scenarios whose name contains one of these")
	flags.StringSliceVarP(&f.projects, "project", "p", nil, "browser projects to run: chromium, firefox, webkit")
	flags.IntVarP(&f.workers, "workers", "w", 0, "number of scenarios run in parallel")
	flags.IntVar(&f.retries, "retries", 0, "retries for a failed scenario")
	flags.StringVar(&f.engine, "engine", "", "automation engine: playwright, rod or selenium")
	flags.BoolVar(&f.headed, "headed", false, "show the browser window")
	return cmd
}
