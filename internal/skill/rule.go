package skill

import (
	"bytes"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/validator"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
	"github.com/thoreinstein/claudekit/pkg/frontmatter"
)

// Rule is the frontmatter of a rule file. Paths scopes the rule to files
// matching any of the glob patterns; an empty list applies it everywhere.
type Rule struct {
	Paths PatternList `yaml:"paths,omitempty"`
}

// PatternList accepts a YAML list of strings or a single string.
type PatternList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PatternList) UnmarshalYAML(value *yaml.Node) error {
	var multi []string
	if err := value.Decode(&multi); err == nil {
		*p = multi
		return nil
	}

	var single string
	if err := value.Decode(&single); err == nil {
		*p = PatternList{single}
		return nil
	}

	return errors.Newf("paths must be a string or list of strings, got %s", value.Tag)
}

// ValidateRuleFile reads path and validates it as a rule document.
func ValidateRuleFile(path string) (*validator.Result, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return ValidateRule(data), nil
}

// ValidateRule checks rule content. Frontmatter is optional, but when
// present it must be valid YAML and every paths entry a valid glob.
func ValidateRule(data []byte) *validator.Result {
	result := &validator.Result{}

	var r Rule
	if _, err := frontmatter.Parse(bytes.NewReader(data), &r); err != nil {
		result.AddError("frontmatter", frontmatterMessage(err), nil)
		return result
	}

	for i, pattern := range r.Paths {
		field := fmt.Sprintf("paths[%d]", i)
		if pattern == "" {
			result.AddError(field, "pattern cannot be empty", nil)
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			result.AddError(field, "invalid glob pattern", pattern)
		}
	}

	return result
}
