package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront_e2e/application/interaction"
	"storefront_e2e/application/scenarios"
	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ScreenshotMode controls when an attempt's page is captured
type ScreenshotMode string

const (
	ScreenshotOff           ScreenshotMode = "off"
	ScreenshotOn            ScreenshotMode = "on"
	ScreenshotOnlyOnFailure ScreenshotMode = "only-on-failure"
)

const (
	defaultTimeout    = 3 * time.Minute
	screenshotTimeout = 10 * time.Second
)

// Settings configures a run
type Settings struct {
	Projects      []string
	Workers       int
	FullyParallel bool
	Retries       int
	// StartInterval is the minimum gap between two scenario starts
	StartInterval time.Duration
	// Timeout bounds one scenario attempt
	Timeout     time.Duration
	Screenshot  ScreenshotMode
	Interaction interaction.Settings
	Target      scenarios.Target
}

// LaunchFunc starts the browser for a project
type LaunchFunc func(project string) (interfaces.Browser, error)

// Runner runs scenarios across projects with retries and bounded parallelism
type Runner struct {
	settings Settings
	launch   LaunchFunc
	store    interfaces.ArtifactStore
	guard    interfaces.ActionGuard
	logger   logrus.FieldLogger
}

// New - creates new runner; store and guard are optional
func New(settings Settings, launch LaunchFunc, store interfaces.ArtifactStore, guard interfaces.ActionGuard, logger logrus.FieldLogger) *Runner {
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	if settings.Retries < 0 {
		settings.Retries = 0
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaultTimeout
	}
	return &Runner{
		settings: settings,
		launch:   launch,
		store:    store,
		guard:    guard,
		logger:   logger,
	}
}

// job is one scenario on one project; its result lands at index
type job struct {
	index    int
	project  string
	browser  interfaces.Browser
	scenario scenarios.Scenario
	startErr error
}

// Run - runs every scenario on every project and returns the report.
// Scenario failures are recorded in the report; the returned error is
// non-nil only when the run is interrupted or the report cannot be saved.
func (r *Runner) Run(ctx context.Context, selected []scenarios.Scenario) (entities.RunReport, error) {
	report := entities.RunReport{StartedAt: time.Now()}

	browsers := make(map[string]interfaces.Browser, len(r.settings.Projects))
	launchErrs := make(map[string]error)
	for _, project := range r.settings.Projects {
		browser, err := r.launch(project)
		if err != nil {
			r.logger.WithField("project", project).WithError(err).Error("Failed to launch browser")
			launchErrs[project] = err
			continue
		}
		browsers[project] = browser
	}
	defer func() {
		for project, browser := range browsers {
			if err := browser.Close(); err != nil {
				r.logger.WithField("project", project).WithError(err).Warn("Failed to close browser")
			}
		}
	}()

	// groups run concurrently, jobs inside a group run in order
	var groups [][]job
	results := make([]entities.ScenarioResult, 0, len(r.settings.Projects)*len(selected))
	for _, project := range r.settings.Projects {
		var group []job
		for _, sc := range selected {
			j := job{
				index:    len(results),
				project:  project,
				browser:  browsers[project],
				scenario: sc,
				startErr: launchErrs[project],
			}
			results = append(results, entities.ScenarioResult{
				Scenario: sc.Name,
				Project:  project,
				Verdict:  entities.VerdictSkipped,
			})
			if r.settings.FullyParallel {
				groups = append(groups, []job{j})
			} else {
				group = append(group, j)
			}
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}

	limit := rate.Inf
	if r.settings.StartInterval > 0 {
		limit = rate.Every(r.settings.StartInterval)
	}
	pacer := rate.NewLimiter(limit, 1)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.settings.Workers)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			for _, j := range group {
				if err := pacer.Wait(ctx); err != nil {
					return nil
				}
				res := r.runScenario(ctx, j)
				mu.Lock()
				results[j.index] = res
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Results = results
	report.FinishedAt = time.Now()

	r.logger.WithFields(logrus.Fields{
		"passed":  report.Count(entities.VerdictPassed),
		"failed":  report.Count(entities.VerdictFailed),
		"flaky":   report.Count(entities.VerdictFlaky),
		"skipped": report.Count(entities.VerdictSkipped),
	}).Info("Run finished")

	if r.store != nil {
		path, err := r.store.SaveReport(report)
		if err != nil {
			return report, fmt.Errorf("failed to save report: %w", err)
		}
		r.logger.WithField("path", path).Debug("Report saved")
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}

// runScenario - runs a scenario until it passes or runs out of retries
func (r *Runner) runScenario(ctx context.Context, j job) entities.ScenarioResult {
	result := entities.ScenarioResult{
		Scenario: j.scenario.Name,
		Project:  j.project,
		Verdict:  entities.VerdictSkipped,
	}

	if j.startErr != nil {
		result.Verdict = entities.VerdictFailed
		result.Attempts = []entities.AttemptResult{{
			Attempt:   1,
			Error:     j.startErr.Error(),
			ErrorKind: entities.ErrorKind(j.startErr),
		}}
		return result
	}

	for attempt := 1; attempt <= r.settings.Retries+1; attempt++ {
		if ctx.Err() != nil {
			break
		}
		res := r.runAttempt(ctx, j, attempt)
		result.Attempts = append(result.Attempts, res)
		if res.Passed {
			break
		}
	}

	last, ok := result.LastAttempt()
	switch {
	case !ok:
		result.Verdict = entities.VerdictSkipped
	case last.Passed && len(result.Attempts) == 1:
		result.Verdict = entities.VerdictPassed
	case last.Passed:
		result.Verdict = entities.VerdictFlaky
	default:
		result.Verdict = entities.VerdictFailed
	}
	return result
}

// runAttempt - runs one attempt on a fresh page under the attempt timeout
func (r *Runner) runAttempt(ctx context.Context, j job, attempt int) entities.AttemptResult {
	log := r.logger.WithFields(logrus.Fields{
		"scenario": j.scenario.Name,
		"project":  j.project,
		"attempt":  attempt,
	})
	log.Info("Scenario started")

	started := time.Now()
	res := entities.AttemptResult{Attempt: attempt}

	attemptCtx, cancel := context.WithTimeout(ctx, r.settings.Timeout)
	defer cancel()

	page, err := j.browser.NewPage(attemptCtx)
	if err != nil {
		err = fmt.Errorf("failed to open page: %w", err)
		res.Duration = time.Since(started)
		res.Error = err.Error()
		res.ErrorKind = entities.ErrorKind(err)
		log.WithError(err).Error("Scenario failed")
		return res
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.WithError(err).Debug("Failed to close page")
		}
	}()

	session := interaction.NewSession(page, r.settings.Interaction, r.guard, log)
	err = j.scenario.Execute(attemptCtx, session, r.settings.Target)

	res.Duration = time.Since(started)
	res.Passed = err == nil
	if err != nil {
		res.Error = err.Error()
		res.ErrorKind = entities.ErrorKind(err)
	}

	if r.wantScreenshot(res.Passed) {
		res.Screenshot = r.capture(ctx, page, fmt.Sprintf("%s-%s-attempt%d", j.project, j.scenario.Name, attempt), log)
	}

	if err != nil {
		log.WithError(err).WithField("kind", res.ErrorKind).Error("Scenario failed")
	} else {
		log.WithField("duration", res.Duration.Round(time.Millisecond)).Info("Scenario passed")
	}
	return res
}

func (r *Runner) wantScreenshot(passed bool) bool {
	if r.store == nil {
		return false
	}
	switch r.settings.Screenshot {
	case ScreenshotOn:
		return true
	case ScreenshotOnlyOnFailure:
		return !passed
	default:
		return false
	}
}

// capture saves a screenshot; the attempt's own deadline may already be spent
func (r *Runner) capture(ctx context.Context, page interfaces.Page, name string, log logrus.FieldLogger) string {
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), screenshotTimeout)
	defer cancel()

	data, err := page.Screenshot(shotCtx)
	if err != nil {
		log.WithError(err).Warn("Failed to take screenshot")
		return ""
	}
	path, err := r.store.SaveScreenshot(name, data)
	if err != nil {
		log.WithError(err).Warn("Failed to save screenshot")
		return ""
	}
	return path
}
