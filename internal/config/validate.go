package config

import (
	"errors"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thoreinstein/claudekit/internal/paths"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidPattern indicates an ignore pattern does not compile.
	ErrInvalidPattern = errors.New("invalid ignore pattern")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, &FieldError{
			Field: "version",
			Value: strconv.Itoa(cfg.Version),
			Err:   ErrUnsupportedVersion,
		})
	}

	pathFields := []struct{ field, value string }{
		{"bundle_dir", cfg.BundleDir},
		{"claude_dir", cfg.ClaudeDir},
		{"enterprise_dir", cfg.EnterpriseDir},
		{"bootstrap.dir", cfg.Bootstrap.Dir},
	}
	for _, f := range pathFields {
		if err := paths.Validate(f.value); err != nil {
			errs = append(errs, &FieldError{Field: f.field, Value: f.value, Err: ErrInvalidPath})
		}
	}

	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, &FieldError{Field: "ignore", Value: pattern, Err: ErrInvalidPattern})
		}
	}

	return errs
}

// FieldError represents a validation error for one config field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
