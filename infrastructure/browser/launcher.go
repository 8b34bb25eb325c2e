package browser

import (
	"fmt"

	"storefront_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Engine names an automation backend
type Engine string

const (
	EnginePlaywright Engine = "playwright"
	EngineRod        Engine = "rod"
	EngineSelenium   Engine = "selenium"
)

// Launch - starts the browser for one project on the selected engine
func Launch(engine Engine, opts Options, logger logrus.FieldLogger) (interfaces.Browser, error) {
	logger = logger.WithField("engine", engine).WithField("project", opts.Project)

	switch engine {
	case EnginePlaywright, "":
		return NewPlaywrightBrowser(opts, logger)
	case EngineRod:
		return NewRodBrowser(opts, logger)
	case EngineSelenium:
		return NewSeleniumBrowser(opts, logger)
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
