package frontmatter

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter is the line that opens and closes a frontmatter block.
const Delimiter = "---"

var (
	// ErrMissingFrontmatter indicates the document does not start with a delimiter line.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnterminated indicates the opening delimiter has no closing delimiter.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")
)

// Split separates a document into its raw frontmatter and body.
// The returned frontmatter excludes both delimiter lines. CRLF line endings
// are accepted.
func Split(content []byte) (matter, body []byte, err error) {
	first, rest, _ := cutLine(content)
	if !isDelimiter(first) {
		return nil, content, ErrMissingFrontmatter
	}

	offset := 0
	for len(rest[offset:]) > 0 {
		line, _, _ := cutLine(rest[offset:])
		next := offset + len(line)
		if next < len(rest) && rest[next] == '\n' {
			next++
		}
		if isDelimiter(line) {
			return rest[:offset], rest[next:], nil
		}
		offset = next
	}

	return nil, content, ErrUnterminated
}

// Parse extracts YAML frontmatter into matter and returns the body.
// Documents without frontmatter are returned whole with matter untouched.
func Parse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, false)
}

// MustParse is like Parse but fails when the document has no frontmatter.
func MustParse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, true)
}

func parse[T any](r io.Reader, matter *T, required bool) ([]byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fm, body, err := Split(content)
	if err != nil {
		if !required && errors.Is(err, ErrMissingFrontmatter) {
			return content, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(fm, matter); err != nil {
		return nil, err
	}
	return body, nil
}

// Format renders matter as YAML between delimiter lines, followed by body.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Delimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(matter); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	buf.WriteString(Delimiter + "\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// cutLine returns the first line of b without its terminator, the
// remainder after the newline, and whether a newline was found.
func cutLine(b []byte) (line, rest []byte, found bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == Delimiter
}
