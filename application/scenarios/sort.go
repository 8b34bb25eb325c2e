package scenarios

import (
	"context"
	"fmt"

	"storefront_e2e/application/interaction"
	"storefront_e2e/domain/entities"
)

// SortDirection is the requested price order
type SortDirection string

const (
	Descending SortDirection = "descending"
	Ascending  SortDirection = "ascending"
)

// SortByPrice - sorts the category by price both ways and expects ordered prices
func SortByPrice(ctx context.Context, sf *Storefront) error {
	if err := sf.OpenCategory(ctx, entities.LoadStateNetworkIdle); err != nil {
		return err
	}
	if err := sf.WaitForFullRender(ctx); err != nil {
		return err
	}

	if err := sf.session.Actuator.Act(ctx, SelSorter, entities.SelectOption("price"), interaction.ActOptions{}).Err(); err != nil {
		return err
	}
	if err := sf.WaitForFullRender(ctx); err != nil {
		return err
	}

	prices, err := ApplySort(ctx, sf, Descending)
	if err != nil {
		return err
	}
	if err := ExpectSortedDescending(prices); err != nil {
		return err
	}

	prices, err = ApplySort(ctx, sf, Ascending)
	if err != nil {
		return err
	}
	return ExpectSortedAscending(prices)
}

// ApplySort - clicks the direction toggle and polls until the listing is ordered,
// returning the prices as finally displayed
func ApplySort(ctx context.Context, sf *Storefront, direction SortDirection) ([]float64, error) {
	toggle, ordered := SelSortDescending, IsSortedDescending
	if direction == Ascending {
		toggle, ordered = SelSortAscending, IsSortedAscending
	}

	if err := sf.session.Actuator.Click(ctx, toggle); err != nil {
		return nil, err
	}
	if err := sf.WaitForFullRender(ctx); err != nil {
		return nil, err
	}

	err := sf.AwaitTrue(ctx, fmt.Sprintf("prices %s", direction), func(ctx context.Context) (bool, error) {
		prices, err := sf.ReadPrices(ctx)
		if err != nil {
			return false, err
		}
		return len(prices) > 0 && ordered(prices), nil
	})
	if err != nil {
		return nil, err
	}

	prices, err := sf.ReadPrices(ctx)
	if err != nil {
		return nil, err
	}
	sf.session.Logger.WithField("prices", prices).Infof("Prices sorted %s", direction)
	return prices, nil
}
