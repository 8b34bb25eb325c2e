package scenarios

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront_e2e/application/interaction"
	"storefront_e2e/domain/entities"

	"github.com/sirupsen/logrus"
)

type pageKind int

const (
	pageBlank pageKind = iota
	pageHome
	pageCategory
	pageSearch
	pageProduct
	pageCart
)

type product struct {
	name  string
	price float64
}

// fakeStorefront simulates a slow shop: listings and totals update some time
// after the action that triggers them, and an overlay masks the page meanwhile.
type fakeStorefront struct {
	mu sync.Mutex

	target   Target
	delay    time.Duration
	products []product

	kind        pageKind
	url         string
	searchValue string

	// listing order: "" keeps catalogue position
	order         string
	shownOrder    string
	renderedAt    time.Time
	brokenSorting bool

	overlayUntil time.Time

	size, color  bool
	added        bool
	minicartOpen bool

	unitPrice     float64
	qtyInput      string
	qty           int
	appliedQty    int
	subtotalAt    time.Time
	brokenTotals  bool
	failNavigates int
}

func newFakeStorefront(target Target, delay time.Duration) *fakeStorefront {
	return &fakeStorefront{
		target: target,
		delay:  delay,
		products: []product{
			{name: "Proteus Fleece Jacket", price: 50},
			{name: "Montana Wind Jacket", price: 30},
			{name: "Jupiter All-Weather Trainer", price: 80},
		},
		unitPrice:  25,
		qty:        1,
		appliedQty: 1,
	}
}

// busy masks the page for one delay
func (f *fakeStorefront) busy() {
	f.overlayUntil = time.Now().Add(f.delay)
}

func (f *fakeStorefront) listed() []product {
	order := f.shownOrder
	if time.Now().After(f.renderedAt) {
		order = f.order
		f.shownOrder = order
	}
	out := append([]product(nil), f.products...)
	switch order {
	case "asc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].price < out[j].price })
	case "desc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].price > out[j].price })
	}
	return out
}

func (f *fakeStorefront) reorder(order string) {
	if f.brokenSorting {
		return
	}
	f.shownOrder = f.order
	f.order = order
	f.renderedAt = time.Now().Add(f.delay)
	f.busy()
}

func (f *fakeStorefront) currentSubtotal() float64 {
	qty := f.appliedQty
	if time.Now().After(f.subtotalAt) {
		qty = f.qty
		f.appliedQty = qty
	}
	total := f.unitPrice * float64(qty)
	if f.brokenTotals && qty > 1 {
		total += f.unitPrice
	}
	return total
}

func (f *fakeStorefront) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNavigates > 0 {
		f.failNavigates--
		return errors.New("net::ERR_CONNECTION_RESET")
	}
	f.url = url
	switch {
	case url == f.target.BaseURL:
		f.kind = pageHome
	case url == f.target.CategoryURL():
		f.kind = pageCategory
	default:
		return fmt.Errorf("unexpected url %s", url)
	}
	f.busy()
	return nil
}

func (f *fakeStorefront) WaitForLoadState(ctx context.Context, state entities.LoadState, timeout time.Duration) error {
	return nil
}

func (f *fakeStorefront) Count(ctx context.Context, selector string) (int, error) {
	visible, err := f.IsVisible(ctx, selector)
	if err != nil || !visible {
		return 0, err
	}
	return 1, nil
}

func (f *fakeStorefront) IsVisible(ctx context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing := f.kind == pageCategory || f.kind == pageSearch
	switch selector {
	case interaction.DefaultOverlaySelector:
		return time.Now().Before(f.overlayUntil), nil
	case SelSearchBox, SelShowCart:
		return f.kind != pageBlank, nil
	case SelProductLink, SelFirstProductLink, SelProductInfo, SelPriceBox:
		return listing, nil
	case SelSorter, SelSortDescending, SelSortAscending:
		return f.kind == pageCategory, nil
	case SelSizeM, SelFirstColor, SelAddToCart:
		return f.kind == pageProduct, nil
	case SelSuccessMessage:
		return f.added && f.kind == pageProduct, nil
	case SelViewCart:
		return f.minicartOpen, nil
	case SelQtyInput, SelUpdateCart:
		return f.kind == pageCart, nil
	}
	return false, nil
}

func (f *fakeStorefront) Click(ctx context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch selector {
	case SelFirstProductLink:
		f.kind = pageProduct
		f.busy()
	case SelSizeM:
		f.size = true
	case SelFirstColor:
		f.color = true
	case SelAddToCart:
		if !f.size || !f.color {
			return errors.New("options not selected")
		}
		f.added = true
		f.busy()
	case SelSortDescending:
		f.reorder("desc")
	case SelSortAscending:
		f.reorder("asc")
	case SelShowCart:
		f.minicartOpen = f.added
	case SelViewCart:
		f.kind = pageCart
		f.minicartOpen = false
		f.busy()
	case SelUpdateCart:
		qty, err := strconv.Atoi(f.qtyInput)
		if err != nil {
			return err
		}
		f.qty = qty
		f.subtotalAt = time.Now().Add(f.delay)
		f.busy()
	default:
		return fmt.Errorf("nothing to click at %s", selector)
	}
	return nil
}

func (f *fakeStorefront) Fill(ctx context.Context, selector string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch selector {
	case SelSearchBox:
		f.searchValue = text
	case SelQtyInput:
		f.qtyInput = text
	default:
		return fmt.Errorf("cannot fill %s", selector)
	}
	return nil
}

func (f *fakeStorefront) Press(ctx context.Context, selector string, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selector == SelSearchBox && key == "Enter" {
		f.kind = pageSearch
		f.busy()
		return nil
	}
	return fmt.Errorf("unexpected key %s on %s", key, selector)
}

func (f *fakeStorefront) SelectOption(ctx context.Context, selector string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selector != SelSorter || value != "price" {
		return fmt.Errorf("unexpected option %s on %s", value, selector)
	}
	f.reorder("asc")
	return nil
}

func (f *fakeStorefront) ReadText(ctx context.Context, selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch selector {
	case SelSuccessMessage:
		if f.added {
			return "You added Proteus Fleece Jacket to your shopping cart.", nil
		}
	case SelCartCounter:
		if f.added {
			return "1", nil
		}
		return "", nil
	case SelCartItemInfo:
		if f.kind == pageCart {
			return "Proteus Fleece Jacket Size: M Color: Black", nil
		}
	case SelUnitPrice:
		if f.kind == pageCart {
			return fmt.Sprintf("$%.2f", f.unitPrice), nil
		}
	case SelSubtotal:
		if f.kind == pageCart {
			return fmt.Sprintf("$%.2f", f.currentSubtotal()), nil
		}
	}
	return "", fmt.Errorf("no text at %s", selector)
}

func (f *fakeStorefront) ReadAllText(ctx context.Context, selector string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selector != SelProductLink || (f.kind != pageSearch && f.kind != pageCategory) {
		return nil, nil
	}
	var names []string
	for _, p := range f.listed() {
		if f.kind == pageSearch && !strings.Contains(strings.ToLower(p.name), strings.ToLower(f.searchValue)) {
			continue
		}
		names = append(names, p.name)
	}
	return names, nil
}

func (f *fakeStorefront) ReadAttribute(ctx context.Context, selector string, name string) (string, error) {
	values, err := f.ReadAllAttributes(ctx, selector, name)
	if err != nil || len(values) == 0 {
		return "", fmt.Errorf("no attribute %s at %s", name, selector)
	}
	return values[0], nil
}

func (f *fakeStorefront) ReadAllAttributes(ctx context.Context, selector string, name string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selector != SelPriceWrapper || name != AttrPriceAmount || f.kind != pageCategory {
		return nil, nil
	}
	var amounts []string
	for _, p := range f.listed() {
		amounts = append(amounts, strconv.FormatFloat(p.price, 'f', -1, 64))
	}
	return amounts, nil
}

func (f *fakeStorefront) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	return nil, errors.New("no script engine")
}

func (f *fakeStorefront) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (f *fakeStorefront) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *fakeStorefront) Close() error { return nil }

func testSettings() interaction.Settings {
	return interaction.Settings{
		PollInterval:      5 * time.Millisecond,
		ActionTimeout:     500 * time.Millisecond,
		ExpectTimeout:     500 * time.Millisecond,
		NavigationTimeout: 500 * time.Millisecond,
		Navigation: entities.RetryPolicy{
			MaxAttempts:       3,
			Backoff:           5 * time.Millisecond,
			PerAttemptTimeout: time.Second,
		},
		OverlaySelector: interaction.DefaultOverlaySelector,
		OverlayTimeout:  200 * time.Millisecond,
	}
}

func newTestStorefront(shop *fakeStorefront) *Storefront {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	session := interaction.NewSession(shop, testSettings(), nil, logger)
	return NewStorefront(session, shop.target)
}
