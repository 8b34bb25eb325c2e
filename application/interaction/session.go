package interaction

import (
	"time"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Settings carries the timeouts and policies threaded into every primitive
type Settings struct {
	PollInterval      time.Duration
	ActionTimeout     time.Duration
	ExpectTimeout     time.Duration
	NavigationTimeout time.Duration
	Navigation        entities.RetryPolicy
	OverlaySelector   string
	OverlayTimeout    time.Duration
}

// Session bundles one page with the primitives driving it.
// A session belongs to a single scenario attempt and is not shared.
type Session struct {
	Page      interfaces.Page
	Settings  Settings
	Waiter    *Waiter
	Navigator *Navigator
	Actuator  *Actuator
	Observer  *Observer
	Logger    logrus.FieldLogger
}

// NewSession - wires the primitives around page
func NewSession(page interfaces.Page, settings Settings, guard interfaces.ActionGuard, logger logrus.FieldLogger) *Session {
	waiter := NewWaiter(page, settings.PollInterval, logger)
	actuator := NewActuator(page, waiter, ActOptions{
		VisibleTimeout:  settings.ActionTimeout,
		OverlaySelector: settings.OverlaySelector,
		OverlayTimeout:  settings.OverlayTimeout,
	}, logger)
	if guard != nil {
		actuator.WithGuard(guard)
	}

	return &Session{
		Page:      page,
		Settings:  settings,
		Waiter:    waiter,
		Navigator: NewNavigator(page, waiter, logger),
		Actuator:  actuator,
		Observer:  NewObserver(settings.PollInterval, logger),
		Logger:    logger,
	}
}
