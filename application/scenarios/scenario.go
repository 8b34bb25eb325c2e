package scenarios

import (
	"context"
	"fmt"
	"strings"

	"storefront_e2e/application/interaction"
)

// Scenario is one end-to-end user flow
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, sf *Storefront) error
}

// Execute - runs the scenario on session
func (s Scenario) Execute(ctx context.Context, session *interaction.Session, target Target) error {
	return s.Run(ctx, NewStorefront(session, target))
}

// All returns the storefront scenarios in their canonical order
func All() []Scenario {
	return []Scenario{
		{
			Name:        "search",
			Description: "Verify that search box is working properly",
			Run:         Search,
		},
		{
			Name:        "sort",
			Description: "Verify that Sort functionality is working properly",
			Run:         SortByPrice,
		},
		{
			Name:        "add-to-cart",
			Description: `Verify "Add to Cart" is working correctly`,
			Run:         AddToCart,
		},
	}
}

// Select returns the scenarios whose names contain any of patterns; no patterns selects all
func Select(all []Scenario, patterns []string) ([]Scenario, error) {
	if len(patterns) == 0 {
		return all, nil
	}
	var selected []Scenario
	for _, sc := range all {
		for _, p := range patterns {
			if strings.Contains(sc.Name, strings.ToLower(strings.TrimSpace(p))) {
				selected = append(selected, sc)
				break
			}
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no scenario matches %s", strings.Join(patterns, ", "))
	}
	return selected, nil
}
