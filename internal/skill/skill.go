// Package skill parses and validates the Markdown documents a bundle ships:
// SKILL.md files and path-scoped rule files.
package skill

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/pkg/frontmatter"
)

// FileName is the name of a skill definition file.
const FileName = "SKILL.md"

// ToolList holds allowed-tools, written either as a YAML list or a
// space-delimited string.
type ToolList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *ToolList) UnmarshalYAML(value *yaml.Node) error {
	var multi []string
	if err := value.Decode(&multi); err == nil {
		*t = multi
		return nil
	}

	var single string
	if err := value.Decode(&single); err == nil {
		*t = strings.Fields(single)
		return nil
	}

	return errors.Newf("allowed-tools must be a string or list of strings, got %s", value.Tag)
}

// String returns the space-delimited form.
func (t ToolList) String() string {
	return strings.Join(t, " ")
}

// Skill is the frontmatter of a SKILL.md file plus its Markdown body.
type Skill struct {
	Name         string            `yaml:"name" json:"name"`
	Description  string            `yaml:"description" json:"description"`
	License      string            `yaml:"license,omitempty" json:"license,omitempty"`
	AllowedTools ToolList          `yaml:"allowed-tools,omitempty" json:"allowed_tools,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`

	// Instructions is the Markdown body after the frontmatter.
	Instructions string `yaml:"-" json:"-"`
}

// ParseError reports a document that could not be parsed.
type ParseError struct {
	Path string // Path to the file that failed to parse
	Err  error  // Underlying error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing skill: %v", e.Err)
	}
	return fmt.Sprintf("parsing skill %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseBytes parses SKILL.md content. The frontmatter must open on the
// first line. The path is used for error context only.
func ParseBytes(data []byte, path string) (*Skill, error) {
	var s Skill
	body, err := frontmatter.MustParse(bytes.NewReader(data), &s)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	s.Instructions = strings.TrimSpace(string(body))
	return &s, nil
}
