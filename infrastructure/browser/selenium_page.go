package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const chromeDriverPort = 9515

var seleniumKeys = map[string]string{
	"enter":     selenium.EnterKey,
	"escape":    selenium.EscapeKey,
	"tab":       selenium.TabKey,
	"backspace": selenium.BackspaceKey,
	"arrowdown": selenium.DownArrowKey,
	"arrowup":   selenium.UpArrowKey,
	"space":     selenium.SpaceKey,
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("chromedriver not found at %s", configured)
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary() string {
	if path := os.Getenv("CHROME_BINARY_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

type seleniumBrowser struct {
	service *selenium.Service
	caps    selenium.Capabilities
	opts    Options
	logger  logrus.FieldLogger

	mu    sync.Mutex
	pages []*seleniumPage
}

// NewSeleniumBrowser - starts chromedriver; every page gets its own webdriver session
func NewSeleniumBrowser(opts Options, logger logrus.FieldLogger) (interfaces.Browser, error) {
	if opts.Project != "" && opts.Project != "chromium" {
		return nil, fmt.Errorf("selenium engine drives chromium only, got project %q", opts.Project)
	}

	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	service, err := selenium.NewChromeDriverService(driverPath, chromeDriverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	args := append([]string{
		"--no-sandbox",
		fmt.Sprintf("--window-size=%d,%d", opts.ViewportWidth, opts.ViewportHeight),
	}, launchArgs...)
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	chromeCaps := chrome.Capabilities{Args: args}
	if binary := findChromeBinary(); binary != "" {
		logger.Infof("Using Chrome binary at: %s", binary)
		chromeCaps.Path = binary
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chromeCaps)

	return &seleniumBrowser{
		service: service,
		caps:    caps,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Name - returns engine and project
func (b *seleniumBrowser) Name() string {
	return "selenium/chromium"
}

// NewPage - opens a new webdriver session
func (b *seleniumBrowser) NewPage(ctx context.Context) (interfaces.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wd, err := selenium.NewRemote(b.caps, fmt.Sprintf("http://localhost:%d/wd/hub", chromeDriverPort))
	if err != nil {
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	p := &seleniumPage{wd: wd, slowMo: b.opts.SlowMo}
	b.mu.Lock()
	b.pages = append(b.pages, p)
	b.mu.Unlock()
	return p, nil
}

// Close - quits every session and stops chromedriver
func (b *seleniumBrowser) Close() error {
	b.mu.Lock()
	pages := b.pages
	b.pages = nil
	b.mu.Unlock()

	for _, p := range pages {
		_ = p.Close()
	}
	if err := b.service.Stop(); err != nil {
		return fmt.Errorf("failed to stop chromedriver: %w", err)
	}
	return nil
}

type seleniumPage struct {
	wd     selenium.WebDriver
	slowMo time.Duration

	closeOnce sync.Once
	closeErr  error
}

// pace mirrors the slow-motion delay of the other engines before each action
func (p *seleniumPage) pace(ctx context.Context) error {
	if p.slowMo <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.slowMo):
		return nil
	}
}

func (p *seleniumPage) findElement(selector string) (selenium.WebElement, error) {
	els, err := p.wd.FindElements(selenium.ByCSSSelector, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("no element matches %s", selector)
	}
	return els[0], nil
}

// Navigate - navigates to url; webdriver returns once the document has loaded
func (p *seleniumPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	left, err := budget(ctx, timeout)
	if err != nil {
		return err
	}
	if err := p.wd.SetPageLoadTimeout(left); err != nil {
		return fmt.Errorf("failed to set page load timeout: %w", err)
	}
	if err := p.wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitForLoadState - polls the document until it reaches state
func (p *seleniumPage) WaitForLoadState(ctx context.Context, state entities.LoadState, timeout time.Duration) error {
	script := "return " + readyStateScript(state)
	return waitUntil(ctx, timeout, string(state), func() (bool, error) {
		res, err := p.wd.ExecuteScript(script, nil)
		if err != nil {
			return false, err
		}
		ok, _ := res.(bool)
		return ok, nil
	})
}

// Count - counts elements matching selector
func (p *seleniumPage) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	els, err := p.wd.FindElements(selenium.ByCSSSelector, selector)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// IsVisible - reports whether the first match is displayed; no match is not visible
func (p *seleniumPage) IsVisible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	els, err := p.wd.FindElements(selenium.ByCSSSelector, selector)
	if err != nil || len(els) == 0 {
		return false, err
	}
	return els[0].IsDisplayed()
}

// Click - scrolls the first match into view and clicks it
func (p *seleniumPage) Click(ctx context.Context, selector string) error {
	if err := p.pace(ctx); err != nil {
		return err
	}
	el, err := p.findElement(selector)
	if err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	if _, err := p.wd.ExecuteScript(`arguments[0].scrollIntoView({block: "center"});`, []interface{}{el}); err != nil {
		if err := el.MoveTo(0, 0); err != nil {
			return fmt.Errorf("failed to scroll to %s: %w", selector, err)
		}
	}
	if err := el.Click(); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Fill - clears the input and types text
func (p *seleniumPage) Fill(ctx context.Context, selector string, text string) error {
	if err := p.pace(ctx); err != nil {
		return err
	}
	el, err := p.findElement(selector)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	if err := el.Clear(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", selector, err)
	}
	if err := el.SendKeys(text); err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

// Press - sends key to the element
func (p *seleniumPage) Press(ctx context.Context, selector string, key string) error {
	k, ok := seleniumKeys[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unsupported key: %s", key)
	}
	if err := p.pace(ctx); err != nil {
		return err
	}
	el, err := p.findElement(selector)
	if err != nil {
		return fmt.Errorf("failed to press %s on %s: %w", key, selector, err)
	}
	if err := el.SendKeys(k); err != nil {
		return fmt.Errorf("failed to press %s on %s: %w", key, selector, err)
	}
	return nil
}

// SelectOption - clicks the option with value inside the select
func (p *seleniumPage) SelectOption(ctx context.Context, selector string, value string) error {
	if err := p.pace(ctx); err != nil {
		return err
	}
	el, err := p.findElement(selector)
	if err != nil {
		return fmt.Errorf("failed to select %s in %s: %w", value, selector, err)
	}
	option, err := el.FindElement(selenium.ByCSSSelector, fmt.Sprintf("option[value=%q]", value))
	if err != nil {
		return fmt.Errorf("failed to select %s in %s: %w", value, selector, err)
	}
	if err := option.Click(); err != nil {
		return fmt.Errorf("failed to select %s in %s: %w", value, selector, err)
	}
	return nil
}

// ReadText - returns the trimmed text of the first match
func (p *seleniumPage) ReadText(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	el, err := p.findElement(selector)
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

// ReadAllText - returns the trimmed text of every match
func (p *seleniumPage) ReadAllText(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els, err := p.wd.FindElements(selenium.ByCSSSelector, selector)
	if err != nil {
		return nil, fmt.Errorf("failed to read texts of %s: %w", selector, err)
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("failed to read texts of %s: %w", selector, err)
		}
		texts = append(texts, strings.TrimSpace(text))
	}
	return texts, nil
}

// ReadAttribute - returns an attribute of the first match
func (p *seleniumPage) ReadAttribute(ctx context.Context, selector string, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	el, err := p.findElement(selector)
	if err != nil {
		return "", fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	value, err := el.GetAttribute(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	return value, nil
}

// ReadAllAttributes - returns an attribute of every match
func (p *seleniumPage) ReadAllAttributes(ctx context.Context, selector string, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := p.wd.ExecuteScript(
		`return Array.from(document.querySelectorAll(arguments[0])).map(e => e.getAttribute(arguments[1]) || "");`,
		[]interface{}{selector, name})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	return toStrings(res), nil
}

// Evaluate - evaluates expression in the page
func (p *seleniumPage) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.wd.ExecuteScript(fmt.Sprintf("return (%s);", expression), nil)
}

// Screenshot - takes a screenshot of the viewport
func (p *seleniumPage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.wd.Screenshot()
}

// URL - returns the current page URL
func (p *seleniumPage) URL() string {
	url, err := p.wd.CurrentURL()
	if err != nil {
		return ""
	}
	return url
}

// Close - quits the webdriver session
func (p *seleniumPage) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.wd.Quit()
	})
	return p.closeErr
}

var (
	_ interfaces.Browser = (*seleniumBrowser)(nil)
	_ interfaces.Page    = (*seleniumPage)(nil)
)
