package frontmatter

import (
	"errors"
	"strings"
	"testing"
)

type skillMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantMatter string
		wantBody   string
		wantErr    error
	}{
		{
			name:       "standard",
			input:      "---\nname: a\n---\nbody\n",
			wantMatter: "name: a\n",
			wantBody:   "body\n",
		},
		{
			name:       "crlf",
			input:      "---\r\nname: a\r\n---\r\nbody",
			wantMatter: "name: a\r\n",
			wantBody:   "body",
		},
		{
			name:       "empty block",
			input:      "---\n---\n",
			wantMatter: "",
			wantBody:   "",
		},
		{
			name:       "closing delimiter at EOF",
			input:      "---\nname: a\n---",
			wantMatter: "name: a\n",
			wantBody:   "",
		},
		{
			name:       "dashes inside values are not delimiters",
			input:      "---\ndescription: a --- b\n----\n---\nbody",
			wantMatter: "description: a --- b\n----\n",
			wantBody:   "body",
		},
		{
			name:    "no frontmatter",
			input:   "# Title\n",
			wantErr: ErrMissingFrontmatter,
		},
		{
			name:    "empty document",
			input:   "",
			wantErr: ErrMissingFrontmatter,
		},
		{
			name:    "delimiter not on first line",
			input:   "\n---\nname: a\n---\n",
			wantErr: ErrMissingFrontmatter,
		},
		{
			name:    "unterminated",
			input:   "---\nname: a\nbody\n",
			wantErr: ErrUnterminated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matter, body, err := Split([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Split() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Split() unexpected error: %v", err)
			}
			if string(matter) != tt.wantMatter {
				t.Errorf("matter = %q, want %q", matter, tt.wantMatter)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParse(t *testing.T) {
	var m skillMatter
	body, err := Parse(strings.NewReader("---\nname: review\ndescription: Reviews code\n---\n# Review\n"), &m)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Name != "review" || m.Description != "Reviews code" {
		t.Errorf("unexpected matter: %+v", m)
	}
	if string(body) != "# Review\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_Optional(t *testing.T) {
	var m skillMatter
	body, err := Parse(strings.NewReader("# Just a rule\n"), &m)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if string(body) != "# Just a rule\n" {
		t.Errorf("body = %q", body)
	}
}

func TestMustParse_Missing(t *testing.T) {
	var m skillMatter
	_, err := MustParse(strings.NewReader("# No matter\n"), &m)
	if !errors.Is(err, ErrMissingFrontmatter) {
		t.Errorf("MustParse() error = %v, want ErrMissingFrontmatter", err)
	}
}

func TestMustParse_InvalidYAML(t *testing.T) {
	var m skillMatter
	_, err := MustParse(strings.NewReader("---\nname: [unclosed\n---\n"), &m)
	if err == nil {
		t.Error("expected YAML error")
	}
}

func TestFormat(t *testing.T) {
	out, err := Format(skillMatter{Name: "x", Description: "does things"}, "Body")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "---\nname: x\ndescription: does things\n---\n\nBody\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}

	var m skillMatter
	if _, err := MustParse(strings.NewReader(string(out)), &m); err != nil {
		t.Fatalf("formatted output does not parse: %v", err)
	}
	if m.Name != "x" || m.Description != "does things" {
		t.Errorf("round trip = %+v", m)
	}
}

func TestFormat_QuotesAmbiguousScalars(t *testing.T) {
	out, err := Format(skillMatter{Name: "x", Description: "y"}, "Body")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var m skillMatter
	if _, err := MustParse(strings.NewReader(string(out)), &m); err != nil {
		t.Fatalf("formatted output does not parse: %v", err)
	}
	if m.Description != "y" {
		t.Errorf("round trip description = %q, want %q", m.Description, "y")
	}
}
