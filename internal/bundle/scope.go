package bundle

import (
	"strings"

	"github.com/thoreinstein/claudekit/internal/errors"
)

// ErrUnknownScope indicates a scope name that is not global, project or enterprise.
var ErrUnknownScope = errors.New("unknown scope")

// Scope selects one subtree of the bundle and its installed counterpart.
type Scope string

const (
	// Global is the per-user configuration in ~/.claude.
	Global Scope = "global"
	// Project is the configuration at a project's root.
	Project Scope = "project"
	// Enterprise is the machine-wide managed settings directory.
	Enterprise Scope = "enterprise"
)

// Scopes lists every scope in display order.
var Scopes = []Scope{Global, Project, Enterprise}

func (s Scope) String() string {
	return string(s)
}

// ParseScope parses a scope name, case-insensitively.
func ParseScope(name string) (Scope, error) {
	switch s := Scope(strings.ToLower(strings.TrimSpace(name))); s {
	case Global, Project, Enterprise:
		return s, nil
	default:
		return "", errors.Wrapf(ErrUnknownScope, "%q (want global, project or enterprise)", name)
	}
}

// ParseScopes parses a list of scope names. "all" expands to every scope and
// "both" to global and project. Duplicates are dropped.
func ParseScopes(names []string) ([]Scope, error) {
	var out []Scope
	seen := make(map[Scope]bool)
	add := func(s Scope) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "all":
			for _, s := range Scopes {
				add(s)
			}
		case "both":
			add(Global)
			add(Project)
		default:
			s, err := ParseScope(name)
			if err != nil {
				return nil, err
			}
			add(s)
		}
	}
	return out, nil
}
