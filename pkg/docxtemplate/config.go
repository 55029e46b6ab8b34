package docxtemplate

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for the template engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error off"`
	// StrictMode turns expressions that select no data into errors instead of empty text
	StrictMode bool `yaml:"strict_mode"`
	// Locale is the BCP 47 tag used to render item indexes
	Locale string `yaml:"locale" validate:"required"`
	// MaxNestingDepth caps how deeply directives may nest inside each other
	MaxNestingDepth int `yaml:"max_nesting_depth" validate:"gt=0"`
	// CompactOutput strips insignificant whitespace from rendered XML
	CompactOutput bool `yaml:"compact_output"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once

	validate     *validator.Validate
	validateOnce sync.Once
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		StrictMode:      false,
		Locale:          "en",
		MaxNestingDepth: 64,
		CompactOutput:   false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	config.applyEnvironment()
	return config
}

func (c *Config) applyEnvironment() {
	// DOCXTEMPLATE_LOG_LEVEL
	if val := os.Getenv("DOCXTEMPLATE_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}

	// DOCXTEMPLATE_STRICT_MODE
	if val := os.Getenv("DOCXTEMPLATE_STRICT_MODE"); val != "" {
		c.StrictMode = parseBool(val)
	}

	// DOCXTEMPLATE_LOCALE
	if val := os.Getenv("DOCXTEMPLATE_LOCALE"); val != "" {
		c.Locale = val
	}

	// DOCXTEMPLATE_MAX_NESTING_DEPTH
	if val := os.Getenv("DOCXTEMPLATE_MAX_NESTING_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			c.MaxNestingDepth = depth
		}
	}

	// DOCXTEMPLATE_COMPACT_OUTPUT
	if val := os.Getenv("DOCXTEMPLATE_COMPACT_OUTPUT"); val != "" {
		c.CompactOutput = parseBool(val)
	}
}

// LoadConfigFile reads a YAML configuration file. Keys absent from the file
// keep their defaults; environment variables override the file.
func LoadConfigFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(content, config); err != nil {
		return nil, NewDocumentError("parse", path, err)
	}
	config.applyEnvironment()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New()
	})

	var issues []ValidationIssue
	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		for _, e := range validationErrs {
			issues = append(issues, ValidationIssue{Field: e.Field(), Message: validationMessage(e)})
		}
	}

	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			issues = append(issues, ValidationIssue{Field: "Locale", Message: fmt.Sprintf("invalid locale %q", c.Locale)})
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	default:
		return "is invalid"
	}
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	configOnce.Do(func() {
		globalConfigMutex.Lock()
		if globalConfig == nil {
			globalConfig = ConfigFromEnvironment()
		}
		globalConfigMutex.Unlock()
	})

	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	GetGlobalConfig()

	globalConfigMutex.Lock()
	if config == nil {
		config = DefaultConfig()
	}
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
