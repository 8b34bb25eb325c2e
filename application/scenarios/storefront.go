package scenarios

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storefront_e2e/application/interaction"
	"storefront_e2e/domain/entities"
)

// Selectors of the demo storefront
const (
	SelSearchBox        = "#search"
	SelProductLink      = ".product-item-link"
	SelFirstProductLink = ".product-item-link:first-child"
	SelProductInfo      = ".product-item-info"
	SelPriceBox         = ".price-box"
	SelPriceWrapper     = ".price-wrapper"
	SelSorter           = "#sorter"
	SelSortDescending   = `.sorter-action[title="Set Descending Direction"]`
	SelSortAscending    = `.sorter-action[title="Set Ascending Direction"]`
	SelSizeM            = `.swatch-option.text[option-label="M"]`
	SelFirstColor       = ".swatch-option.color:first-child"
	SelAddToCart        = "#product-addtocart-button"
	SelSuccessMessage   = ".message-success"
	SelCartCounter      = ".minicart-wrapper .counter-number"
	SelShowCart         = ".action.showcart"
	SelViewCart         = ".action.viewcart"
	SelCartItemInfo     = ".item-info"
	SelQtyInput         = "input.qty"
	SelUpdateCart       = `button[name="update_cart_action"][value="update_qty"]`
	SelUnitPrice        = ".price-excluding-tax .price"
	SelSubtotal         = ".subtotal .price"

	AttrPriceAmount = "data-price-amount"
)

// Target describes where the scenarios run
type Target struct {
	BaseURL      string
	CategoryPath string
	SearchTerm   string
	Size         string
}

// DefaultTarget is the public Magento demo storefront
func DefaultTarget() Target {
	return Target{
		BaseURL:      "https://magento.softwaretestingboard.com/",
		CategoryPath: "men/tops-men/jackets-men.html",
		SearchTerm:   "Jacket",
		Size:         "M",
	}
}

// CategoryURL returns the absolute URL of the product category
func (t Target) CategoryURL() string {
	return strings.TrimRight(t.BaseURL, "/") + "/" + strings.TrimLeft(t.CategoryPath, "/")
}

// Storefront drives the demo shop through a session's primitives
type Storefront struct {
	session *interaction.Session
	target  Target
}

// NewStorefront - creates new storefront driver
func NewStorefront(session *interaction.Session, target Target) *Storefront {
	return &Storefront{
		session: session,
		target:  target,
	}
}

// Open - navigates to url, treating state as "loaded"
func (s *Storefront) Open(ctx context.Context, url string, state entities.LoadState) error {
	completion, err := entities.LoadStateReached(state, s.session.Settings.NavigationTimeout)
	if err != nil {
		return err
	}
	return s.session.Navigator.Navigate(ctx, url, completion, s.session.Settings.Navigation)
}

// OpenHome - navigates to the storefront home page
func (s *Storefront) OpenHome(ctx context.Context) error {
	return s.Open(ctx, s.target.BaseURL, entities.LoadStateDOMContentLoaded)
}

// OpenCategory - navigates to the product category
func (s *Storefront) OpenCategory(ctx context.Context, state entities.LoadState) error {
	return s.Open(ctx, s.target.CategoryURL(), state)
}

// AwaitVisible - waits up to the expect timeout for selector to be visible
func (s *Storefront) AwaitVisible(ctx context.Context, selector string) error {
	cond, err := entities.ElementVisible(selector, s.session.Settings.ExpectTimeout)
	if err != nil {
		return err
	}
	return s.session.Waiter.Await(ctx, cond)
}

// AwaitLoadState - waits up to the navigation timeout for the document to reach state
func (s *Storefront) AwaitLoadState(ctx context.Context, state entities.LoadState) error {
	cond, err := entities.LoadStateReached(state, s.session.Settings.NavigationTimeout)
	if err != nil {
		return err
	}
	return s.session.Waiter.Await(ctx, cond)
}

// AwaitTrue - polls predicate up to the expect timeout
func (s *Storefront) AwaitTrue(ctx context.Context, description string, predicate entities.Predicate) error {
	cond, err := entities.PredicateTrue(description, predicate, s.session.Settings.ExpectTimeout)
	if err != nil {
		return err
	}
	return s.session.Waiter.Await(ctx, cond)
}

// WaitForFullRender - waits until the product grid and every price amount are rendered
func (s *Storefront) WaitForFullRender(ctx context.Context) error {
	if err := s.AwaitLoadState(ctx, entities.LoadStateNetworkIdle); err != nil {
		return err
	}
	s.session.Actuator.ClearOverlay(ctx)
	if err := s.AwaitVisible(ctx, SelProductInfo); err != nil {
		return err
	}
	if err := s.AwaitVisible(ctx, SelPriceBox); err != nil {
		return err
	}
	return s.AwaitTrue(ctx, "all prices carry an amount", func(ctx context.Context) (bool, error) {
		amounts, err := s.session.Page.ReadAllAttributes(ctx, SelPriceWrapper, AttrPriceAmount)
		if err != nil {
			return false, err
		}
		if len(amounts) == 0 {
			return false, nil
		}
		for _, amount := range amounts {
			if amount == "" {
				return false, nil
			}
		}
		return true, nil
	})
}

// ReadPrices - reads the listed prices in display order
func (s *Storefront) ReadPrices(ctx context.Context) ([]float64, error) {
	amounts, err := s.session.Page.ReadAllAttributes(ctx, SelPriceWrapper, AttrPriceAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to read prices: %w", err)
	}
	prices := make([]float64, 0, len(amounts))
	for _, amount := range amounts {
		price, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price %q: %w", amount, err)
		}
		prices = append(prices, price)
	}
	return prices, nil
}

// ReadPrice - reads a single price label such as "$25.00"
func (s *Storefront) ReadPrice(ctx context.Context, selector string) (float64, error) {
	text, err := s.session.Page.ReadText(ctx, selector)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", selector, err)
	}
	return entities.ParsePrice(text)
}
