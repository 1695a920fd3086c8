// Package git wraps the git commands used to fetch and update a bundle.
package git

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thoreinstein/claudekit/internal/errors"
)

// DefaultBranch is cloned when no branch is configured.
const DefaultBranch = "main"

var (
	// ErrInvalidURL indicates a remote that is not an accepted git URL.
	ErrInvalidURL = errors.New("invalid git URL")
	// ErrNotRepository indicates a directory without a .git directory.
	ErrNotRepository = errors.New("not a git repository")
)

var (
	schemeRe = regexp.MustCompile(`^(https?|ssh|git|file)://\S+$`)
	scpRe    = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:\S+\.git$`)
)

// IsURL returns true if s looks like a git repository URL: it has a scheme
// ("://") or is an scp-like "user@host:path" remote. A bare repository
// name such as "dotclaude.git" is not a URL.
func IsURL(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	user, rest, ok := strings.Cut(s, "@")
	return ok && user != "" && strings.Contains(rest, ":")
}

// ValidateURL accepts http(s), ssh, git and file URLs and scp-like
// "user@host:path.git" remotes. Values that could be read as options or
// remote helpers (ext::) are rejected.
func ValidateURL(url string) error {
	switch {
	case url == "":
		return errors.Wrap(ErrInvalidURL, "empty URL")
	case strings.HasPrefix(url, "-"):
		return errors.Wrapf(ErrInvalidURL, "%q looks like an option", url)
	case schemeRe.MatchString(url), scpRe.MatchString(url):
		return nil
	default:
		return errors.Wrapf(ErrInvalidURL, "%q", url)
	}
}

// GitHubURL returns the HTTPS clone URL of user/repo on GitHub.
func GitHubURL(user, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s.git", user, strings.TrimSuffix(repo, ".git"))
}

// Client runs git with the configured streams. Stdin is connected so that
// interactive authentication (SSH passphrase, credentials) works.
type Client struct {
	Binary string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a client that streams git output to stdout and stderr.
func New(stdout, stderr io.Writer) *Client {
	return &Client{Binary: "git", Stdin: os.Stdin, Stdout: stdout, Stderr: stderr}
}

// Clone clones branch of url into dest.
func (c *Client) Clone(ctx context.Context, url, branch, dest string) error {
	if err := ValidateURL(url); err != nil {
		return err
	}
	if branch == "" {
		branch = DefaultBranch
	}
	if err := c.run(ctx, "clone", "--branch", branch, "--", url, dest); err != nil {
		return errors.Wrapf(err, "git clone %s", url)
	}
	return nil
}

// Pull performs a fast-forward-only pull in dir.
func (c *Client) Pull(ctx context.Context, dir string) error {
	if err := c.run(ctx, "-C", dir, "pull", "--ff-only"); err != nil {
		return errors.Wrapf(err, "git pull in %s", dir)
	}
	return nil
}

func (c *Client) run(ctx context.Context, args ...string) error {
	bin := c.Binary
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}

// ValidateRepo checks that dir holds a .git directory.
func ValidateRepo(dir string) error {
	gitDir := filepath.Join(dir, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotRepository, "%s", dir)
		}
		return errors.Wrap(err, "checking git directory")
	}
	if !info.IsDir() {
		return errors.Newf(".git is not a directory: %s", gitDir)
	}
	return nil
}

// IsRepo reports whether dir holds a .git directory.
func IsRepo(dir string) bool {
	return ValidateRepo(dir) == nil
}
