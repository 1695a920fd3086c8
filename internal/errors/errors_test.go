package errors

import (
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading config: %w", ErrInvalidConfig), ExitUser),
			want: "loading config: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitSystem),
			want: "exit code 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	err := NewUserError(Wrap(ErrValidationFailed, "skills"), "fix the skill")
	if !Is(err, ErrValidationFailed) {
		t.Error("errors.Is should find ErrValidationFailed through ExitError")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"user", NewUserError(ErrValidationFailed, ""), ExitUser},
		{"system", NewSystemError(New("disk full"), ""), ExitSystem},
		{"wrapped user", Wrap(NewUserError(ErrVerificationFailed, ""), "verify"), ExitUser},
		{"plain error", New("boom"), ExitSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSuggestion(t *testing.T) {
	err := Wrap(NewConfigError(ErrInvalidConfig), "loading")
	if got := Suggestion(err); got != "Run: claudekit config show" {
		t.Errorf("Suggestion() = %q", got)
	}
	if got := Suggestion(New("plain")); got != "" {
		t.Errorf("Suggestion() = %q, want empty", got)
	}
}
