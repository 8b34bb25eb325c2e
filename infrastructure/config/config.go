package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"gopkg.in/yaml.v3"
)

// Engine names a browser automation backend
type Engine string

const (
	EnginePlaywright Engine = "playwright"
	EngineRod        Engine = "rod"
	EngineSelenium   Engine = "selenium"
)

// ScreenshotMode controls when screenshots are captured
type ScreenshotMode string

const (
	ScreenshotOff           ScreenshotMode = "off"
	ScreenshotOn            ScreenshotMode = "on"
	ScreenshotOnlyOnFailure ScreenshotMode = "only-on-failure"
)

// Config holds the runner configuration
type Config struct {
	BaseURL      string `yaml:"base_url" envconfig:"E2E_BASE_URL"`
	CategoryPath string `yaml:"category_path" envconfig:"E2E_CATEGORY_PATH"`
	SearchTerm   string `yaml:"search_term" envconfig:"E2E_SEARCH_TERM"`

	Engine         Engine        `yaml:"engine" envconfig:"E2E_ENGINE"`
	Projects       []string      `yaml:"projects" envconfig:"E2E_PROJECTS"`
	Headless       bool          `yaml:"headless" envconfig:"E2E_HEADLESS"`
	SlowMo         time.Duration `yaml:"slow_mo" envconfig:"E2E_SLOW_MO"`
	ViewportWidth  int           `yaml:"viewport_width" envconfig:"E2E_VIEWPORT_WIDTH"`
	ViewportHeight int           `yaml:"viewport_height" envconfig:"E2E_VIEWPORT_HEIGHT"`

	// DriverPath points at chromedriver for the selenium engine
	DriverPath string `yaml:"driver_path" envconfig:"BROWSER_DRIVER_PATH"`

	CI            bool          `yaml:"-" ignored:"true"`
	FullyParallel bool          `yaml:"fully_parallel" envconfig:"E2E_FULLY_PARALLEL"`
	Retries       int           `yaml:"retries" envconfig:"E2E_RETRIES"`
	Workers       int           `yaml:"workers" envconfig:"E2E_WORKERS"`
	StartInterval time.Duration `yaml:"start_interval" envconfig:"E2E_START_INTERVAL"`

	DefaultTimeout           time.Duration `yaml:"timeout" envconfig:"E2E_TIMEOUT"`
	ExpectTimeout            time.Duration `yaml:"expect_timeout" envconfig:"E2E_EXPECT_TIMEOUT"`
	DefaultActionTimeout     time.Duration `yaml:"action_timeout" envconfig:"E2E_ACTION_TIMEOUT"`
	DefaultNavigationTimeout time.Duration `yaml:"navigation_timeout" envconfig:"E2E_NAVIGATION_TIMEOUT"`
	PollInterval             time.Duration `yaml:"poll_interval" envconfig:"E2E_POLL_INTERVAL"`

	NavigationAttempts   int           `yaml:"navigation_attempts" envconfig:"E2E_NAVIGATION_ATTEMPTS"`
	NavigationBackoff    time.Duration `yaml:"navigation_backoff" envconfig:"E2E_NAVIGATION_BACKOFF"`
	NavigationMultiplier float64       `yaml:"navigation_multiplier" envconfig:"E2E_NAVIGATION_MULTIPLIER"`

	OverlaySelector string        `yaml:"overlay_selector" envconfig:"E2E_OVERLAY_SELECTOR"`
	OverlayTimeout  time.Duration `yaml:"overlay_timeout" envconfig:"E2E_OVERLAY_TIMEOUT"`

	ArtifactDir string         `yaml:"artifact_dir" envconfig:"E2E_ARTIFACT_DIR"`
	Screenshot  ScreenshotMode `yaml:"screenshot" envconfig:"E2E_SCREENSHOT"`
	Guard       bool           `yaml:"guard" envconfig:"E2E_GUARD"`
	LogLevel    string         `yaml:"log_level" envconfig:"E2E_LOG_LEVEL"`
}

// Default returns the configuration tuned for the slow public demo storefront
func Default(ci bool) Config {
	cfg := Config{
		BaseURL:      "https://magento.softwaretestingboard.com/",
		CategoryPath: "men/tops-men/jackets-men.html",
		SearchTerm:   "Jacket",

		Engine:         EnginePlaywright,
		Projects:       []string{"chromium"},
		Headless:       true,
		SlowMo:         100 * time.Millisecond,
		ViewportWidth:  1280,
		ViewportHeight: 720,

		CI:            ci,
		FullyParallel: false,
		Retries:       1,
		Workers:       3,
		StartInterval: 500 * time.Millisecond,

		DefaultTimeout:           3 * time.Minute,
		ExpectTimeout:            30 * time.Second,
		DefaultActionTimeout:     30 * time.Second,
		DefaultNavigationTimeout: 2 * time.Minute,
		PollInterval:             100 * time.Millisecond,

		NavigationAttempts: 3,
		NavigationBackoff:  2 * time.Second,

		OverlaySelector: ".loading-mask",
		OverlayTimeout:  30 * time.Second,

		ArtifactDir: "test-results",
		Screenshot:  ScreenshotOnlyOnFailure,
		Guard:       true,
		LogLevel:    "info",
	}
	if ci {
		cfg.Retries = 2
		cfg.Workers = 1
	}
	return cfg
}

// LoadConfig loads configuration: defaults, then the optional YAML file at path,
// then environment variables (a .env file is honoured when present)
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := Default(isCI(os.LookupEnv))

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isCI(lookup func(string) (string, bool)) bool {
	v, ok := lookup("CI")
	if !ok {
		return false
	}
	v = strings.ToLower(strings.TrimSpace(v))
	return v != "" && v != "0" && v != "false"
}

// Validate - checks the configuration invariants
func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	switch c.Engine {
	case EnginePlaywright, EngineRod, EngineSelenium:
	default:
		errs = append(errs, fmt.Errorf("unknown engine %q", c.Engine))
	}
	if len(c.Projects) == 0 {
		errs = append(errs, errors.New("at least one project is required"))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.NavigationAttempts < 1 {
		errs = append(errs, fmt.Errorf("navigation_attempts must be at least 1, got %d", c.NavigationAttempts))
	}
	for name, d := range map[string]time.Duration{
		"timeout":            c.DefaultTimeout,
		"expect_timeout":     c.ExpectTimeout,
		"action_timeout":     c.DefaultActionTimeout,
		"navigation_timeout": c.DefaultNavigationTimeout,
		"poll_interval":      c.PollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	switch c.Screenshot {
	case ScreenshotOff, ScreenshotOn, ScreenshotOnlyOnFailure:
	default:
		errs = append(errs, fmt.Errorf("unknown screenshot mode %q", c.Screenshot))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
