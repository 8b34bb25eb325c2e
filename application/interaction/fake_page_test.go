package interaction

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"storefront_e2e/domain/entities"

	"github.com/sirupsen/logrus"
)

var errNoElement = errors.New("no element")

// fakePage is a scriptable page handle; state is supplied as functions so tests can
// make elements appear or values change over time.
type fakePage struct {
	mu sync.Mutex

	visible   map[string]func() bool
	texts     map[string]func() string
	evaluate  func() (interface{}, error)
	loadState func(state entities.LoadState) error

	navigateErrs []error
	navigations  int

	clickErr error
	clicks   []string
	fills    map[string]string
	presses  []string
	selects  map[string]string
}

func newFakePage() *fakePage {
	return &fakePage{
		visible: make(map[string]func() bool),
		texts:   make(map[string]func() string),
		fills:   make(map[string]string),
		selects: make(map[string]string),
	}
}

func (p *fakePage) setVisible(selector string, fn func() bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible[selector] = fn
}

func (p *fakePage) setText(selector string, fn func() string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts[selector] = fn
}

func (p *fakePage) clickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clicks)
}

func (p *fakePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	attempt := p.navigations
	p.navigations++
	if attempt < len(p.navigateErrs) {
		return p.navigateErrs[attempt]
	}
	return nil
}

func (p *fakePage) WaitForLoadState(ctx context.Context, state entities.LoadState, timeout time.Duration) error {
	if p.loadState == nil {
		return nil
	}
	return p.loadState(state)
}

func (p *fakePage) Count(ctx context.Context, selector string) (int, error) {
	visible, _ := p.IsVisible(ctx, selector)
	if visible {
		return 1, nil
	}
	return 0, nil
}

func (p *fakePage) IsVisible(ctx context.Context, selector string) (bool, error) {
	p.mu.Lock()
	fn, ok := p.visible[selector]
	p.mu.Unlock()
	if !ok {
		return false, nil
	}
	return fn(), nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks = append(p.clicks, selector)
	return p.clickErr
}

func (p *fakePage) Fill(ctx context.Context, selector string, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fills[selector] = text
	return nil
}

func (p *fakePage) Press(ctx context.Context, selector string, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presses = append(p.presses, selector+":"+key)
	return nil
}

func (p *fakePage) SelectOption(ctx context.Context, selector string, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selects[selector] = value
	return nil
}

func (p *fakePage) ReadText(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	fn, ok := p.texts[selector]
	p.mu.Unlock()
	if !ok {
		return "", errNoElement
	}
	return fn(), nil
}

func (p *fakePage) ReadAllText(ctx context.Context, selector string) ([]string, error) {
	text, err := p.ReadText(ctx, selector)
	if err != nil {
		return nil, nil
	}
	return []string{text}, nil
}

func (p *fakePage) ReadAttribute(ctx context.Context, selector string, name string) (string, error) {
	return "", errNoElement
}

func (p *fakePage) ReadAllAttributes(ctx context.Context, selector string, name string) ([]string, error) {
	return nil, nil
}

func (p *fakePage) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	if p.evaluate == nil {
		return nil, nil
	}
	return p.evaluate()
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (p *fakePage) URL() string { return "about:blank" }

func (p *fakePage) Close() error { return nil }

// after returns a function that reports true once d has elapsed since the call
func after(d time.Duration) func() bool {
	at := time.Now().Add(d)
	return func() bool { return time.Now().After(at) }
}

func always(v bool) func() bool {
	return func() bool { return v }
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
