package terminal

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"storefront_e2e/application/runner"
	"storefront_e2e/domain/entities"
	"storefront_e2e/infrastructure/config"
	"storefront_e2e/infrastructure/storage"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func newTestInterface() (*TerminalInterface, *bytes.Buffer) {
	var out bytes.Buffer
	t := NewTerminalInterface(&out, io.Discard)
	t.fs = afero.NewMemMapFs()
	return t, &out
}

func TestSettingsFollowConfig(t *testing.T) {
	cfg := config.Default(false)
	cfg.NavigationMultiplier = 2
	cfg.SearchTerm = "Hoodie"

	s := RunnerSettings(&cfg)

	assert.Equal(t, 3*time.Minute, s.Timeout)
	assert.Equal(t, 3, s.Workers)
	assert.Equal(t, runner.ScreenshotOnlyOnFailure, s.Screenshot)
	assert.Equal(t, "Hoodie", s.Target.SearchTerm)
	assert.Equal(t, cfg.BaseURL, s.Target.BaseURL)

	nav := s.Interaction.Navigation
	assert.Equal(t, 3, nav.MaxAttempts)
	assert.Equal(t, 2*time.Minute, nav.PerAttemptTimeout)
	assert.Equal(t, 2.0, nav.Multiplier)
	assert.NoError(t, nav.Validate())
	assert.Equal(t, 30*time.Second, s.Interaction.ActionTimeout)
	assert.Equal(t, ".loading-mask", s.Interaction.OverlaySelector)

	opts := BrowserOptions(&cfg, "Firefox")
	assert.Equal(t, "firefox", opts.Project)
	assert.Equal(t, 1280, opts.ViewportWidth)
	assert.Equal(t, 100*time.Millisecond, opts.SlowMo)
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	NewPrinter(&out).PrintReport(entities.RunReport{
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Results: []entities.ScenarioResult{
			{
				Scenario: "search", Project: "chromium", Verdict: entities.VerdictPassed,
				Attempts: []entities.AttemptResult{{Attempt: 1, Passed: true, Duration: 12 * time.Second}},
			},
			{
				Scenario: "sort", Project: "chromium", Verdict: entities.VerdictFailed,
				Attempts: []entities.AttemptResult{
					{Attempt: 1, Error: "boom", ErrorKind: "unknown"},
					{Attempt: 2, Error: "condition prices sorted descending not met within 30s", ErrorKind: "timeout", Screenshot: "test-results/screenshots/sort.png"},
				},
			},
		},
	})

	text := out.String()
	assert.Contains(t, text, "✓ [chromium] search (12s)")
	assert.Contains(t, text, "✗ [chromium] sort")
	assert.Contains(t, text, "2 attempts")
	assert.Contains(t, text, "timeout: condition prices sorted descending")
	assert.Contains(t, text, "screenshot: test-results/screenshots/sort.png")
	assert.NotContains(t, text, "boom")
	assert.Contains(t, text, "1 passed")
	assert.Contains(t, text, "1 failed")
	assert.Contains(t, text, "finished in 1m30s")
}

func TestListCommand(t *testing.T) {
	ti, out := newTestInterface()

	require.NoError(t, ti.Run(context.Background(), []string{"list"}))
	assert.Contains(t, out.String(), "search")
	assert.Contains(t, out.String(), "add-to-cart")
}

func TestReportCommand(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("E2E_ARTIFACT_DIR", "results")
	ti, out := newTestInterface()

	store, err := storage.NewArtifactStore(ti.fs, "results")
	require.NoError(t, err)
	_, err = store.SaveReport(entities.RunReport{Results: []entities.ScenarioResult{
		{Scenario: "add-to-cart", Project: "webkit", Verdict: entities.VerdictFlaky},
	}})
	require.NoError(t, err)

	require.NoError(t, ti.Run(context.Background(), []string{"report"}))
	assert.Contains(t, out.String(), "[webkit] add-to-cart")
	assert.Contains(t, out.String(), "1 flaky")
}

func TestRunCommandRejectsBadInput(t *testing.T) {
	t.Setenv("CI", "")

	ti, _ := newTestInterface()
	err := ti.Run(context.Background(), []string{"run", "--workers", "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must be positive")

	ti, _ = newTestInterface()
	err = ti.Run(context.Background(), []string{"run", "--grep", "checkout"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario matches")
}
