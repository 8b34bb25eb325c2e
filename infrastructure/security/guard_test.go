package security

import (
	"io"
	"testing"

	"storefront_e2e/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGuardAllow(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	guard := NewGuard(logger)

	tests := []struct {
		selector string
		action   entities.Action
		blocked  bool
	}{
		{"#product-addtocart-button", entities.Click(), false},
		{`button[name="update_cart_action"][value="update_qty"]`, entities.Click(), false},
		{".action.showcart", entities.Click(), false},
		{".price-box", entities.Click(), false},
		{"#search", entities.Press("Enter"), false},
		{"#top-cart-btn-checkout", entities.Click(), true},
		{".action.primary.checkout", entities.Click(), true},
		{"button.action-delete", entities.Click(), true},
		{"#checkout-payment-method-load .action", entities.Click(), true},
		{"#checkout", entities.Fill("text"), false},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			err := guard.Allow(tt.selector, tt.action)
			if tt.blocked {
				assert.ErrorIs(t, err, entities.ErrActionBlocked)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuardCustomKeywords(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	guard := NewGuard(logger, "Wishlist")

	assert.ErrorIs(t, guard.Allow("[data-action=add-to-wishlist]", entities.Click()), entities.ErrActionBlocked)
	assert.NoError(t, guard.Allow("#top-cart-btn-checkout", entities.Click()))
}
