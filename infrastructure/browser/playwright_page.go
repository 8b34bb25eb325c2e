package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	logger  logrus.FieldLogger

	mu    sync.Mutex
	pages []*playwrightPage
}

// NewPlaywrightBrowser - starts playwright and launches the project's browser
func NewPlaywrightBrowser(opts Options, logger logrus.FieldLogger) (interfaces.Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	}
	switch opts.Project {
	case "", "chromium":
		browserType = pw.Chromium
		launch.Args = launchArgs
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown playwright project %q", opts.Project)
	}

	browser, err := browserType.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.WithField("project", opts.Project).Info("Playwright browser launched")
	return &playwrightBrowser{
		pw:      pw,
		browser: browser,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Name - returns engine and project
func (b *playwrightBrowser) Name() string {
	return "playwright/" + b.opts.Project
}

// NewPage - opens a page in a fresh browser context
func (b *playwrightBrowser) NewPage(ctx context.Context) (interfaces.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  b.opts.ViewportWidth,
			Height: b.opts.ViewportHeight,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	p := &playwrightPage{
		context:       bctx,
		page:          page,
		actionTimeout: b.opts.ActionTimeout,
	}
	b.mu.Lock()
	b.pages = append(b.pages, p)
	b.mu.Unlock()
	return p, nil
}

// Close - closes every page, the browser and the playwright driver
func (b *playwrightBrowser) Close() error {
	b.mu.Lock()
	pages := b.pages
	b.pages = nil
	b.mu.Unlock()

	for _, p := range pages {
		_ = p.Close()
	}
	if err := b.browser.Close(); err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	if err := b.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type playwrightPage struct {
	context       playwright.BrowserContext
	page          playwright.Page
	actionTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// timeoutMs converts the remaining budget into playwright's millisecond timeout
func (p *playwrightPage) timeoutMs(ctx context.Context, limit time.Duration) (*float64, error) {
	left, err := budget(ctx, limit)
	if err != nil {
		return nil, err
	}
	return playwright.Float(float64(left.Milliseconds())), nil
}

func (p *playwrightPage) first(selector string) playwright.Locator {
	return p.page.Locator(selector).First()
}

// Navigate - navigates to url and returns once the response is committed
func (p *playwrightPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	ms, err := p.timeoutMs(ctx, timeout)
	if err != nil {
		return err
	}
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   ms,
		WaitUntil: playwright.WaitUntilStateCommit,
	}); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitForLoadState - waits for the page to reach state
func (p *playwrightPage) WaitForLoadState(ctx context.Context, state entities.LoadState, timeout time.Duration) error {
	ms, err := p.timeoutMs(ctx, timeout)
	if err != nil {
		return err
	}
	var pwState *playwright.LoadState
	switch state {
	case entities.LoadStateDOMContentLoaded:
		pwState = playwright.LoadStateDomcontentloaded
	case entities.LoadStateNetworkIdle:
		pwState = playwright.LoadStateNetworkidle
	default:
		pwState = playwright.LoadStateLoad
	}
	if err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   pwState,
		Timeout: ms,
	}); err != nil {
		return fmt.Errorf("failed to wait for %s: %w", state, err)
	}
	return nil
}

// Count - counts elements matching selector
func (p *playwrightPage) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.page.Locator(selector).Count()
}

// IsVisible - reports whether the first match is visible; no match is not visible
func (p *playwrightPage) IsVisible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.first(selector).IsVisible()
}

// Click - clicks the first element matching selector
func (p *playwrightPage) Click(ctx context.Context, selector string) error {
	ms, err := p.timeoutMs(ctx, p.actionTimeout)
	if err != nil {
		return err
	}
	if err := p.first(selector).Click(playwright.LocatorClickOptions{Timeout: ms}); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Fill - replaces the value of an input
func (p *playwrightPage) Fill(ctx context.Context, selector string, text string) error {
	ms, err := p.timeoutMs(ctx, p.actionTimeout)
	if err != nil {
		return err
	}
	if err := p.first(selector).Fill(text, playwright.LocatorFillOptions{Timeout: ms}); err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

// Press - presses key on the element
func (p *playwrightPage) Press(ctx context.Context, selector string, key string) error {
	ms, err := p.timeoutMs(ctx, p.actionTimeout)
	if err != nil {
		return err
	}
	if err := p.first(selector).Press(key, playwright.LocatorPressOptions{Timeout: ms}); err != nil {
		return fmt.Errorf("failed to press %s on %s: %w", key, selector, err)
	}
	return nil
}

// SelectOption - selects the option with value
func (p *playwrightPage) SelectOption(ctx context.Context, selector string, value string) error {
	ms, err := p.timeoutMs(ctx, p.actionTimeout)
	if err != nil {
		return err
	}
	_, err = p.first(selector).SelectOption(
		playwright.SelectOptionValues{Values: &[]string{value}},
		playwright.LocatorSelectOptionOptions{Timeout: ms},
	)
	if err != nil {
		return fmt.Errorf("failed to select %s in %s: %w", value, selector, err)
	}
	return nil
}

// ReadText - returns the trimmed text of the first match
func (p *playwrightPage) ReadText(ctx context.Context, selector string) (string, error) {
	ms, err := p.timeoutMs(ctx, p.actionTimeout)
	if err != nil {
		return "", err
	}
	text, err := p.first(selector).TextContent(playwright.LocatorTextContentOptions{Timeout: ms})
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

// ReadAllText - returns the trimmed text of every match
func (p *playwrightPage) ReadAllText(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	texts, err := p.page.Locator(selector).AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("failed to read texts of %s: %w", selector, err)
	}
	for i := range texts {
		texts[i] = strings.TrimSpace(texts[i])
	}
	return texts, nil
}

// ReadAttribute - returns an attribute of the first match
func (p *playwrightPage) ReadAttribute(ctx context.Context, selector string, name string) (string, error) {
	ms, err := p.timeoutMs(ctx, p.actionTimeout)
	if err != nil {
		return "", err
	}
	value, err := p.first(selector).GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: ms})
	if err != nil {
		return "", fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	return value, nil
}

// ReadAllAttributes - returns an attribute of every match
func (p *playwrightPage) ReadAllAttributes(ctx context.Context, selector string, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := p.page.Locator(selector).EvaluateAll(
		`(els, name) => els.map(e => e.getAttribute(name) || "")`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	return toStrings(result), nil
}

// Evaluate - evaluates expression in the page
func (p *playwrightPage) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.page.Evaluate(expression)
}

// Screenshot - takes a full page screenshot
func (p *playwrightPage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

// URL - returns the current page URL
func (p *playwrightPage) URL() string {
	return p.page.URL()
}

// Close - closes the page's browser context
func (p *playwrightPage) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.context.Close()
	})
	return p.closeErr
}

var (
	_ interfaces.Browser = (*playwrightBrowser)(nil)
	_ interfaces.Page    = (*playwrightPage)(nil)
)
