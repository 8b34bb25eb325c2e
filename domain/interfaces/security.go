package interfaces

import "storefront_e2e/domain/entities"

// ActionGuard vetoes actions that must never run against a shared public site
type ActionGuard interface {
	// Allow returns an error wrapping entities.ErrActionBlocked when the action must not run
	Allow(selector string, action entities.Action) error
}
