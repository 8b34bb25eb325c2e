package terminal

import (
	"strings"

	"storefront_e2e/application/interaction"
	"storefront_e2e/application/runner"
	"storefront_e2e/application/scenarios"
	"storefront_e2e/domain/entities"
	"storefront_e2e/infrastructure/browser"
	"storefront_e2e/infrastructure/config"
)

// InteractionSettings maps configuration onto the interaction primitives
func InteractionSettings(cfg *config.Config) interaction.Settings {
	return interaction.Settings{
		PollInterval:      cfg.PollInterval,
		ActionTimeout:     cfg.DefaultActionTimeout,
		ExpectTimeout:     cfg.ExpectTimeout,
		NavigationTimeout: cfg.DefaultNavigationTimeout,
		Navigation: entities.RetryPolicy{
			MaxAttempts:       cfg.NavigationAttempts,
			Backoff:           cfg.NavigationBackoff,
			PerAttemptTimeout: cfg.DefaultNavigationTimeout,
			Multiplier:        cfg.NavigationMultiplier,
		},
		OverlaySelector: cfg.OverlaySelector,
		OverlayTimeout:  cfg.OverlayTimeout,
	}
}

// RunnerSettings maps configuration onto the runner
func RunnerSettings(cfg *config.Config) runner.Settings {
	target := scenarios.DefaultTarget()
	target.BaseURL = cfg.BaseURL
	if cfg.CategoryPath != "" {
		target.CategoryPath = cfg.CategoryPath
	}
	if cfg.SearchTerm != "" {
		target.SearchTerm = cfg.SearchTerm
	}

	return runner.Settings{
		Projects:      cfg.Projects,
		Workers:       cfg.Workers,
		FullyParallel: cfg.FullyParallel,
		Retries:       cfg.Retries,
		StartInterval: cfg.StartInterval,
		Timeout:       cfg.DefaultTimeout,
		Screenshot:    runner.ScreenshotMode(cfg.Screenshot),
		Interaction:   InteractionSettings(cfg),
		Target:        target,
	}
}

// BrowserOptions maps configuration onto a browser engine for project
func BrowserOptions(cfg *config.Config, project string) browser.Options {
	return browser.Options{
		Project:        strings.ToLower(project),
		Headless:       cfg.Headless,
		SlowMo:         cfg.SlowMo,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		ActionTimeout:  cfg.DefaultActionTimeout,
		DriverPath:     cfg.DriverPath,
	}
}
