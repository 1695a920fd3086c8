package verify

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"
	"sort"
	"strings"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/logging"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
)

// settingsDoc is the subset of a settings file this check reads.
type settingsDoc struct {
	Hooks map[string]json.RawMessage `json:"hooks"`
	Env   map[string]any             `json:"env"`
}

// SettingsCheck summarizes configured hook events and flags plaintext
// secrets in the env block of each settings file.
type SettingsCheck struct {
	target Target
}

var _ Check = (*SettingsCheck)(nil)

// NewSettingsCheck creates a SettingsCheck for target.
func NewSettingsCheck(target Target) *SettingsCheck {
	return &SettingsCheck{target: target}
}

// Name returns the unique identifier for this check.
func (c *SettingsCheck) Name() string {
	return "settings"
}

// Category returns the grouping for this check.
func (c *SettingsCheck) Category() string {
	return "config"
}

// Run reads each scope's settings file. An empty or unparseable file is a
// warning here; SyntaxCheck reports the parse error itself.
func (c *SettingsCheck) Run() *CheckResult {
	var findings []finding
	details := make(map[string]any)
	var events []string
	read, secrets := 0, 0

	for _, scope := range c.target.Scopes {
		path := c.target.SettingsPath(scope)
		data, err := fileutil.ReadFileWithLimit(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			findings = append(findings, finding{Path: path, Problem: err.Error(), Severity: SeverityWarning})
			continue
		}

		var doc settingsDoc
		if err := json.Unmarshal(data, &doc); err != nil || len(data) == 0 {
			findings = append(findings, finding{
				Path:     path,
				Problem:  "not valid JSON, hook events and env not read",
				Severity: SeverityWarning,
			})
			continue
		}
		read++

		scopeEvents := make([]string, 0, len(doc.Hooks))
		for event := range doc.Hooks {
			scopeEvents = append(scopeEvents, event)
		}
		sort.Strings(scopeEvents)
		events = append(events, scopeEvents...)

		env := stringEnv(doc.Env)
		masked := logging.MaskSecrets(env)
		var secretKeys []string
		for k, v := range env {
			if masked[k] != v {
				secretKeys = append(secretKeys, k)
			}
		}
		sort.Strings(secretKeys)
		secrets += len(secretKeys)
		for _, k := range secretKeys {
			findings = append(findings, finding{
				Path:     path,
				Problem:  fmt.Sprintf("env %s holds a plaintext secret (%s)", k, masked[k]),
				Severity: SeverityWarning,
			})
		}

		details[string(scope)] = map[string]any{
			"path":        path,
			"hook_events": scopeEvents,
			"env":         masked,
		}
	}

	if read == 0 && len(findings) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no settings files found",
		}
	}

	slices.Sort(events)
	events = slices.Compact(events)
	passMsg := "no hook events configured"
	if len(events) > 0 {
		passMsg = "hook events: " + strings.Join(events, ", ")
	}

	result := resultFrom(c, findings, passMsg)
	if result.Status == SeverityPass {
		result.Status = SeverityInfo
	}
	if result.Details == nil {
		result.Details = map[string]any{}
	}
	for k, v := range details {
		result.Details[k] = v
	}
	if secrets > 0 {
		result.FixHint = "move secrets out of settings files into your shell environment or a secret manager"
	}
	return result
}

// stringEnv keeps the string values of an env block.
func stringEnv(env map[string]any) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
