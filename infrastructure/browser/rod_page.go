package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"
)

var rodKeys = map[string]input.Key{
	"enter":      input.Enter,
	"escape":     input.Escape,
	"tab":        input.Tab,
	"backspace":  input.Backspace,
	"arrowdown":  input.ArrowDown,
	"arrowup":    input.ArrowUp,
	"space":      input.Space,
	"arrow_down": input.ArrowDown,
	"arrow_up":   input.ArrowUp,
}

type rodBrowser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	opts     Options
	logger   logrus.FieldLogger
}

// NewRodBrowser - launches a local chromium over the devtools protocol
func NewRodBrowser(opts Options, logger logrus.FieldLogger) (interfaces.Browser, error) {
	if opts.Project != "" && opts.Project != "chromium" {
		return nil, fmt.Errorf("rod engine drives chromium only, got project %q", opts.Project)
	}

	l := launcher.New().
		Leakless(true).
		Headless(opts.Headless)
	for _, arg := range launchArgs {
		name, value, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if value == "" {
			l = l.Set(flags.Flag(name))
		} else {
			l = l.Set(flags.Flag(name), value)
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(opts.SlowMo)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	logger.WithField("control_url", controlURL).Info("Rod browser launched")
	return &rodBrowser{
		launcher: l,
		browser:  browser,
		opts:     opts,
		logger:   logger,
	}, nil
}

// Name - returns engine and project
func (b *rodBrowser) Name() string {
	return "rod/chromium"
}

// NewPage - opens a stealth page in a fresh incognito context
func (b *rodBrowser) NewPage(ctx context.Context) (interfaces.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create incognito context: %w", err)
	}

	page, err := stealth.Page(incognito)
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.opts.ViewportWidth,
		Height:            b.opts.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		b.logger.WithError(err).Warn("Failed to set viewport")
	}

	return &rodPage{
		incognito:     incognito,
		page:          page,
		actionTimeout: b.opts.ActionTimeout,
	}, nil
}

// Close - closes the browser and kills the launched process
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type rodPage struct {
	incognito     *rod.Browser
	page          *rod.Page
	actionTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// bounded returns the page bound to ctx and limit
func (p *rodPage) bounded(ctx context.Context, limit time.Duration) (*rod.Page, context.CancelFunc, error) {
	left, err := budget(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	opCtx, cancel := context.WithTimeout(ctx, left)
	return p.page.Context(opCtx), cancel, nil
}

// element finds the first match without waiting for it to appear
func (p *rodPage) element(ctx context.Context, selector string) (*rod.Element, context.CancelFunc, error) {
	page, cancel, err := p.bounded(ctx, p.actionTimeout)
	if err != nil {
		return nil, nil, err
	}
	has, el, err := page.Has(selector)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if !has {
		cancel()
		return nil, nil, fmt.Errorf("no element matches %s", selector)
	}
	return el, cancel, nil
}

// Navigate - navigates to url
func (p *rodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	page, cancel, err := p.bounded(ctx, timeout)
	if err != nil {
		return err
	}
	defer cancel()
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitForLoadState - polls the document until it reaches state
func (p *rodPage) WaitForLoadState(ctx context.Context, state entities.LoadState, timeout time.Duration) error {
	script := readyStateScript(state)
	return waitUntil(ctx, timeout, string(state), func() (bool, error) {
		res, err := p.page.Context(ctx).Eval(script)
		if err != nil {
			return false, err
		}
		return res.Value.Bool(), nil
	})
}

// Count - counts elements matching selector
func (p *rodPage) Count(ctx context.Context, selector string) (int, error) {
	page, cancel, err := p.bounded(ctx, p.actionTimeout)
	if err != nil {
		return 0, err
	}
	defer cancel()
	els, err := page.Elements(selector)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// IsVisible - reports whether the first match is visible; no match is not visible
func (p *rodPage) IsVisible(ctx context.Context, selector string) (bool, error) {
	page, cancel, err := p.bounded(ctx, p.actionTimeout)
	if err != nil {
		return false, err
	}
	defer cancel()
	has, el, err := page.Has(selector)
	if err != nil || !has {
		return false, err
	}
	return el.Visible()
}

// Click - clicks the first element matching selector
func (p *rodPage) Click(ctx context.Context, selector string) error {
	el, cancel, err := p.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	defer cancel()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Fill - replaces the value of an input
func (p *rodPage) Fill(ctx context.Context, selector string, text string) error {
	el, cancel, err := p.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	defer cancel()
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", selector, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

// Press - focuses the element and presses key
func (p *rodPage) Press(ctx context.Context, selector string, key string) error {
	k, ok := rodKeys[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unsupported key: %s", key)
	}
	el, cancel, err := p.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("failed to press %s on %s: %w", key, selector, err)
	}
	defer cancel()
	if err := el.Focus(); err != nil {
		return fmt.Errorf("failed to focus %s: %w", selector, err)
	}
	if err := p.page.Keyboard.Press(k); err != nil {
		return fmt.Errorf("failed to press %s on %s: %w", key, selector, err)
	}
	return nil
}

// SelectOption - selects the option with value
func (p *rodPage) SelectOption(ctx context.Context, selector string, value string) error {
	el, cancel, err := p.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("failed to select %s in %s: %w", value, selector, err)
	}
	defer cancel()
	option := fmt.Sprintf("option[value=%q]", value)
	if err := el.Select([]string{option}, true, rod.SelectorTypeCSSSector); err != nil {
		return fmt.Errorf("failed to select %s in %s: %w", value, selector, err)
	}
	return nil
}

// ReadText - returns the trimmed text of the first match
func (p *rodPage) ReadText(ctx context.Context, selector string) (string, error) {
	el, cancel, err := p.element(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	defer cancel()
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

// ReadAllText - returns the trimmed text of every match
func (p *rodPage) ReadAllText(ctx context.Context, selector string) ([]string, error) {
	page, cancel, err := p.bounded(ctx, p.actionTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()
	els, err := page.Elements(selector)
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
func (p *rodPage) ReadAttribute(ctx context.Context, selector string, name string) (string, error) {
	el, cancel, err := p.element(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	defer cancel()
	value, err := el.Attribute(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// ReadAllAttributes - returns an attribute of every match
func (p *rodPage) ReadAllAttributes(ctx context.Context, selector string, name string) ([]string, error) {
	page, cancel, err := p.bounded(ctx, p.actionTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()
	res, err := page.Eval(`(selector, name) => Array.from(document.querySelectorAll(selector)).map(e => e.getAttribute(name) || "")`, selector, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	return toStrings(res.Value.Val()), nil
}

// Evaluate - evaluates expression in the page
func (p *rodPage) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	page, cancel, err := p.bounded(ctx, p.actionTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()
	res, err := page.Eval(fmt.Sprintf("() => (%s)", expression))
	if err != nil {
		return nil, err
	}
	return res.Value.Val(), nil
}

// Screenshot - takes a full page screenshot
func (p *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	page, cancel, err := p.bounded(ctx, p.actionTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// URL - returns the current page URL
func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close - closes the page's incognito context
func (p *rodPage) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.incognito.Close()
	})
	return p.closeErr
}

var (
	_ interfaces.Browser = (*rodBrowser)(nil)
	_ interfaces.Page    = (*rodPage)(nil)
)
