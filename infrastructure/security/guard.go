package security

import (
	"fmt"
	"strings"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Guard keeps scenarios on a shared public storefront from placing orders or
// deleting data. It matches keywords against the selector and the action value.
type Guard struct {
	logger   logrus.FieldLogger
	keywords []string
}

// DefaultBlockedKeywords are the selector fragments of irreversible actions
var DefaultBlockedKeywords = []string{
	"checkout", "place-order", "placeorder", "payment", "pay",
	"delete", "remove", "trash", "clear",
	"create-account", "createaccount", "register",
}

// NewGuard - creates new guard; with no keywords DefaultBlockedKeywords apply
func NewGuard(logger logrus.FieldLogger, keywords ...string) *Guard {
	if len(keywords) == 0 {
		keywords = DefaultBlockedKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		lowered = append(lowered, strings.ToLower(k))
	}
	return &Guard{
		logger:   logger,
		keywords: lowered,
	}
}

// Allow - rejects clicks and key presses whose selector names a blocked operation
func (g *Guard) Allow(selector string, action entities.Action) error {
	if !g.isSubmitting(action) {
		return nil
	}

	lowerSelector := strings.ToLower(selector)
	for _, keyword := range g.keywords {
		if containsWord(lowerSelector, keyword) {
			g.logger.WithFields(logrus.Fields{
				"selector": selector,
				"action":   action.String(),
				"keyword":  keyword,
			}).Warn("Blocked irreversible action")
			return fmt.Errorf("%s on %q matches %q: %w", action.Type, selector, keyword, entities.ErrActionBlocked)
		}
	}
	return nil
}

// isSubmitting - only clicks and key presses can submit anything
func (g *Guard) isSubmitting(action entities.Action) bool {
	return action.Type == entities.ActionClick || action.Type == entities.ActionPress
}

// containsWord - keyword match on selector token boundaries, so "pay" does not match "display"
func containsWord(selector, keyword string) bool {
	tokens := strings.FieldsFunc(selector, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})
	for _, token := range tokens {
		if token == keyword {
			return true
		}
		for _, part := range strings.Split(token, "-") {
			if part == keyword {
				return true
			}
		}
		if strings.Contains(keyword, "-") && strings.Contains(token, keyword) {
			return true
		}
	}
	return false
}

// Ensure Guard implements ActionGuard interface
var _ interfaces.ActionGuard = (*Guard)(nil)
