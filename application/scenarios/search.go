package scenarios

import (
	"context"
	"fmt"

	"storefront_e2e/application/interaction"
	"storefront_e2e/domain/entities"
)

// Search - searches the catalogue and expects matching products
func Search(ctx context.Context, sf *Storefront) error {
	if err := sf.OpenHome(ctx); err != nil {
		return err
	}

	actuator := sf.session.Actuator
	if err := actuator.Fill(ctx, SelSearchBox, sf.target.SearchTerm); err != nil {
		return err
	}
	if err := actuator.Act(ctx, SelSearchBox, entities.Press("Enter"), interaction.ActOptions{}).Err(); err != nil {
		return err
	}

	if err := sf.AwaitLoadState(ctx, entities.LoadStateDOMContentLoaded); err != nil {
		return err
	}
	if err := sf.AwaitVisible(ctx, SelProductLink); err != nil {
		return err
	}

	names, err := sf.session.Page.ReadAllText(ctx, SelProductLink)
	if err != nil {
		return fmt.Errorf("failed to read product names: %w", err)
	}
	sf.session.Logger.WithField("results", len(names)).Info("Search results loaded")

	if err := ExpectNotEmpty("search results", len(names)); err != nil {
		return err
	}
	return ExpectAnyContainsFold("product name", names, sf.target.SearchTerm)
}
