package interfaces

import (
	"context"
	"time"

	"storefront_e2e/domain/entities"
)

// Page defines the page handle a scenario drives. Every method is bounded by ctx
// or by an explicit timeout.
type Page interface {
	// Navigate navigates to a URL and returns once the navigation is committed
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// WaitForLoadState waits until the document reaches state
	WaitForLoadState(ctx context.Context, state entities.LoadState, timeout time.Duration) error

	// Count returns how many elements match selector
	Count(ctx context.Context, selector string) (int, error)

	// IsVisible reports whether the first element matching selector is visible.
	// A selector that matches nothing is not visible and is not an error.
	IsVisible(ctx context.Context, selector string) (bool, error)

	// Click clicks on the first element matching selector
	Click(ctx context.Context, selector string) error

	// Fill replaces the value of an input
	Fill(ctx context.Context, selector string, text string) error

	// Press presses a key on the element
	Press(ctx context.Context, selector string, key string) error

	// SelectOption selects an option of a <select> by value
	SelectOption(ctx context.Context, selector string, value string) error

	// ReadText returns the trimmed text content of the first match
	ReadText(ctx context.Context, selector string) (string, error)

	// ReadAllText returns the trimmed text content of every match
	ReadAllText(ctx context.Context, selector string) ([]string, error)

	// ReadAttribute returns an attribute of the first match
	ReadAttribute(ctx context.Context, selector string, name string) (string, error)

	// ReadAllAttributes returns an attribute of every match
	ReadAllAttributes(ctx context.Context, selector string, name string) ([]string, error)

	// Evaluate evaluates a JavaScript expression in the page
	Evaluate(ctx context.Context, expression string) (interface{}, error)

	// Screenshot takes a screenshot
	Screenshot(ctx context.Context) ([]byte, error)

	// URL returns the current page URL
	URL() string

	// Close closes the page and its session
	Close() error
}

// Browser opens independent page sessions
type Browser interface {
	// Name returns the engine and browser name, e.g. "playwright/chromium"
	Name() string

	// NewPage opens a page in a fresh, isolated session
	NewPage(ctx context.Context) (Page, error)

	// Close closes the browser
	Close() error
}
