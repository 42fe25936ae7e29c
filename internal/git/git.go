// Package git wraps the git CLI with the small set of history and
// staging operations the release gate needs. The gate treats git purely
// as a capability interface: refs resolve to trees of files, commits
// carry changed-file lists, and staging plus commit are the only writes.
package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrNotARepository is returned when the working directory is not
	// inside a git repository.
	ErrNotARepository = errors.New("not a git repository")

	// ErrNoRef is returned when a ref does not resolve to a commit.
	ErrNoRef = errors.New("ref does not resolve")

	// ErrFileNotAtRef is returned when a path does not exist in the tree
	// of the given ref.
	ErrFileNotAtRef = errors.New("file does not exist at ref")
)

// Git runs git commands against one repository.
type Git struct {
	gitPath  string
	repoPath string
}

// New creates a Git bound to the repository containing dir. It verifies
// that git is available and resolves the repository root, so RepoPath
// always names the toplevel.
func New(ctx context.Context, dir string) (*Git, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}

	g := &Git{gitPath: gitPath, repoPath: dir}
	top, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotARepository)
	}
	g.repoPath = strings.TrimSpace(top)
	return g, nil
}

// RepoPath returns the repository toplevel this instance is bound to.
func (g *Git) RepoPath() string {
	return g.repoPath
}

// run executes one git command in the repository and returns its stdout.
// Stderr is folded into the error for diagnostics.
func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", g.repoPath}, args...)
	cmd := exec.CommandContext(ctx, g.gitPath, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, detail)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}

// CurrentBranch returns the name of the checked-out branch.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolving current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RefExists reports whether ref resolves to a commit.
func (g *Git) RefExists(ctx context.Context, ref string) bool {
	_, err := g.run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	return err == nil
}

// MergeBase returns the most recent common ancestor of the two refs.
func (g *Git) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := g.run(ctx, "merge-base", a, b)
	if err != nil {
		return "", fmt.Errorf("merge-base %s %s: %w", a, b, err)
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles lists the paths that differ between the given commit and
// the current working tree, limited to scope when scope is non-empty.
// Paths are repo-relative. Untracked files are not reported.
func (g *Git) ChangedFiles(ctx context.Context, from, scope string) ([]string, error) {
	args := []string{"diff", "--name-only", from}
	if scope != "" {
		args = append(args, "--", scope)
	}
	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("diff against %s: %w", from, err)
	}
	return splitLines(out), nil
}

// ShowFile returns the content of path as it exists in the tree of ref.
func (g *Git) ShowFile(ctx context.Context, ref, path string) ([]byte, error) {
	out, err := g.run(ctx, "show", ref+":"+path)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", path, ref, ErrFileNotAtRef)
	}
	return []byte(out), nil
}

// CommitsTouching lists the hashes of commits in from..to that changed
// path, most recent first.
func (g *Git) CommitsTouching(ctx context.Context, from, to, path string) ([]string, error) {
	out, err := g.run(ctx, "log", "--format=%H", from+".."+to, "--", path)
	if err != nil {
		return nil, fmt.Errorf("log %s..%s -- %s: %w", from, to, path, err)
	}
	return splitLines(out), nil
}

// CommitFiles returns the changed-file list of one commit.
func (g *Git) CommitFiles(ctx context.Context, hash string) ([]string, error) {
	out, err := g.run(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", hash)
	if err != nil {
		return nil, fmt.Errorf("diff-tree %s: %w", hash, err)
	}
	return splitLines(out), nil
}

// CommitSubject returns the subject line of one commit.
func (g *Git) CommitSubject(ctx context.Context, hash string) (string, error) {
	out, err := g.run(ctx, "log", "-1", "--format=%s", hash)
	if err != nil {
		return "", fmt.Errorf("subject of %s: %w", hash, err)
	}
	return strings.TrimSpace(out), nil
}

// Add stages the given paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("staging files: %w", err)
	}
	return nil
}

// Commit creates a commit from the currently staged files and returns
// its hash.
func (g *Git) Commit(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", errors.New("commit message is required")
	}
	if _, err := g.run(ctx, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	out, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolving new commit: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// splitLines splits command output into trimmed, non-empty lines.
func splitLines(out string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
