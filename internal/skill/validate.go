package skill

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/validator"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
	"github.com/thoreinstein/claudekit/pkg/frontmatter"
)

const (
	// MaxNameLength is the maximum length of a skill name.
	MaxNameLength = 64
	// MaxDescriptionLength is the maximum description length in characters.
	MaxDescriptionLength = 1024
)

// nameRegex allows lowercase ASCII letters, digits and hyphens.
var nameRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// toolRegex matches ToolName or ToolName(scope).
var toolRegex = regexp.MustCompile(`^([A-Z][a-zA-Z0-9]*)(?:\(([^)]+)\))?$`)

// Option configures a Validator.
type Option func(*Validator)

// Validator checks SKILL.md documents.
type Validator struct {
	strict bool
}

// NewValidator creates a Validator with the given options.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithStrict reports allowed-tools syntax problems as errors instead of
// warnings.
func WithStrict(strict bool) Option {
	return func(v *Validator) {
		v.strict = strict
	}
}

// ValidateFile reads path and validates it as a SKILL.md document.
// Only read failures are returned as errors; content problems are issues.
func (v *Validator) ValidateFile(path string) (*validator.Result, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return v.Validate(data, path), nil
}

// Validate checks SKILL.md content. The path supplies the containing
// directory for the name check; it may be empty.
func (v *Validator) Validate(data []byte, path string) *validator.Result {
	result := &validator.Result{}

	s, err := ParseBytes(data, path)
	if err != nil {
		result.AddError("frontmatter", frontmatterMessage(err), nil)
		return result
	}

	v.validateName(result, s.Name)
	v.validateDescription(result, s.Description)
	v.validateAllowedTools(result, s.AllowedTools)

	if path != "" && s.Name != "" {
		dir := filepath.Base(filepath.Dir(path))
		if dir != s.Name {
			result.Add(validator.Issue{
				Severity: validator.SeverityWarning,
				Field:    "name",
				Message:  "skill name does not match directory name",
				Value:    s.Name,
				Context:  map[string]string{"directory": dir},
			})
		}
	}

	return result
}

func frontmatterMessage(err error) string {
	switch {
	case errors.Is(err, frontmatter.ErrMissingFrontmatter):
		return "file must start with '---' on the first line"
	case errors.Is(err, frontmatter.ErrUnterminated):
		return "frontmatter is not closed by a '---' line"
	default:
		return "invalid YAML: " + errors.UnwrapAll(err).Error()
	}
}

func (v *Validator) validateName(result *validator.Result, name string) {
	if name == "" {
		result.AddError("name", "name is required", nil)
		return
	}

	if len(name) > MaxNameLength {
		result.AddError("name", "name exceeds maximum length of 64 characters", name)
	}

	if !nameRegex.MatchString(name) {
		msg := "name may contain only lowercase letters, digits and hyphens"
		if strings.ToLower(name) != name {
			msg = "name must be lowercase"
		} else if strings.Contains(name, "_") {
			msg = "name cannot contain underscores"
		}
		result.AddError("name", msg, name)
	}
}

func (v *Validator) validateDescription(result *validator.Result, description string) {
	if description == "" {
		result.AddError("description", "description is required", nil)
		return
	}

	if strings.TrimSpace(description) == "" {
		result.AddError("description", "description cannot be only whitespace", nil)
		return
	}

	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		result.AddError("description", "description exceeds maximum length of 1024 characters", n)
	}
}

func (v *Validator) validateAllowedTools(result *validator.Result, tools ToolList) {
	severity := validator.SeverityWarning
	if v.strict {
		severity = validator.SeverityError
	}
	for _, tool := range tools {
		if !toolRegex.MatchString(tool) {
			result.Add(validator.Issue{
				Severity: severity,
				Field:    "allowed-tools",
				Message:  "tool must be PascalCase with an optional (scope), e.g. Read or Bash(git:*)",
				Value:    tool,
			})
		}
	}
}
