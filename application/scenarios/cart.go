package scenarios

import (
	"context"
	"fmt"
	"strconv"

	"storefront_e2e/application/interaction"
	"storefront_e2e/domain/entities"
)

// PriceTolerance is the accepted rounding error on computed totals
const PriceTolerance = 0.01

// AddToCart - adds a configured product to the cart, updates its quantity and
// expects the subtotal to follow
func AddToCart(ctx context.Context, sf *Storefront) error {
	actuator := sf.session.Actuator

	if err := sf.OpenCategory(ctx, entities.LoadStateDOMContentLoaded); err != nil {
		return err
	}
	actuator.ClearOverlay(ctx)

	if err := actuator.Click(ctx, SelFirstProductLink); err != nil {
		return err
	}
	actuator.ClearOverlay(ctx)

	for _, selector := range []string{sizeSelector(sf.target.Size), SelFirstColor, SelAddToCart} {
		if err := actuator.Click(ctx, selector); err != nil {
			return err
		}
	}

	if err := sf.AwaitVisible(ctx, SelSuccessMessage); err != nil {
		return err
	}
	message, err := sf.session.Page.ReadText(ctx, SelSuccessMessage)
	if err != nil {
		return fmt.Errorf("failed to read success message: %w", err)
	}
	if err := ExpectContains("success message", message, "You added"); err != nil {
		return err
	}

	if err := OpenCart(ctx, sf); err != nil {
		return err
	}

	details, err := sf.session.Page.ReadText(ctx, SelCartItemInfo)
	if err != nil {
		return fmt.Errorf("failed to read cart item: %w", err)
	}
	if err := ExpectContains("cart item", details, sf.target.Size); err != nil {
		return err
	}

	const qty = 2
	unitPrice, change, err := UpdateQuantity(ctx, sf, qty)
	if err != nil {
		return err
	}
	if !change.After.Numeric {
		return &entities.AssertionFailure{
			Expectation: "subtotal is a price",
			Expected:    "amount",
			Actual:      change.After.Text,
		}
	}
	return ExpectApprox("subtotal", unitPrice*qty, change.After.Number, PriceTolerance)
}

// OpenCart - opens the minicart once it reflects the added item and follows it to the cart page
func OpenCart(ctx context.Context, sf *Storefront) error {
	err := sf.AwaitTrue(ctx, "minicart shows the item", func(ctx context.Context) (bool, error) {
		count, err := sf.session.Page.ReadText(ctx, SelCartCounter)
		if err != nil {
			return false, err
		}
		n, err := strconv.Atoi(count)
		return err == nil && n > 0, nil
	})
	if err != nil {
		return err
	}

	actuator := sf.session.Actuator
	if err := actuator.Click(ctx, SelShowCart); err != nil {
		return err
	}
	if err := actuator.Click(ctx, SelViewCart); err != nil {
		return err
	}
	actuator.ClearOverlay(ctx)
	return nil
}

// UpdateQuantity - sets the cart quantity and waits for the subtotal to change.
// It returns the unit price and the observed subtotal change.
func UpdateQuantity(ctx context.Context, sf *Storefront, qty int) (float64, entities.Change, error) {
	actuator := sf.session.Actuator

	if err := actuator.Fill(ctx, SelQtyInput, strconv.Itoa(qty)); err != nil {
		return 0, entities.Change{}, err
	}

	unitPrice, err := sf.ReadPrice(ctx, SelUnitPrice)
	if err != nil {
		return 0, entities.Change{}, err
	}

	change, err := sf.session.Observer.ObserveChange(ctx,
		interaction.PriceOf(sf.session.Page, SelSubtotal),
		func(ctx context.Context) error {
			return actuator.Click(ctx, SelUpdateCart)
		},
		sf.session.Settings.ExpectTimeout,
	)
	if err != nil {
		return 0, change, err
	}

	sf.session.Logger.WithField("before", change.Before.Text).
		WithField("after", change.After.Text).
		Info("Subtotal updated")
	return unitPrice, change, nil
}

func sizeSelector(size string) string {
	if size == "" || size == "M" {
		return SelSizeM
	}
	return fmt.Sprintf(`.swatch-option.text[option-label=%q]`, size)
}
