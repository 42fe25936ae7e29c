package release

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coopersmall/semgate/internal/manifest"
	"github.com/coopersmall/semgate/internal/semver"
)

// PendingBump is one computed-but-unwritten patch bump. Edits are held
// in memory so a later package's violation can abort the run with no
// file mutated.
type PendingBump struct {
	Package  string
	Manifest string // repo-relative
	From     semver.Version
	To       semver.Version

	content []byte
}

// AutoBumper computes patch bumps and writes them once the whole scan
// has succeeded.
type AutoBumper struct {
	repoRoot string
}

// NewAutoBumper creates an AutoBumper rooted at the repository path.
func NewAutoBumper(repoRoot string) *AutoBumper {
	return &AutoBumper{repoRoot: repoRoot}
}

// Plan computes the patch bump for one package without touching disk.
func (b *AutoBumper) Plan(desc Descriptor, m *manifest.Manifest) (PendingBump, error) {
	next := m.Version.Bump(semver.BumpPatch)
	content, err := m.WithVersion(next)
	if err != nil {
		return PendingBump{}, fmt.Errorf("planning patch bump for %s: %w", desc.Name, err)
	}
	return PendingBump{
		Package:  desc.Name,
		Manifest: desc.Manifest,
		From:     m.Version,
		To:       next,
		content:  content,
	}, nil
}

// Apply writes every pending edit to the working tree.
func (b *AutoBumper) Apply(bumps []PendingBump) error {
	for _, bump := range bumps {
		path := filepath.Join(b.repoRoot, bump.Manifest)
		if err := os.WriteFile(path, bump.content, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", bump.Manifest, err)
		}
	}
	return nil
}

// CommitMessage renders the governance commit message enumerating every
// bumped package and its new version.
func CommitMessage(bumps []PendingBump) string {
	var sb strings.Builder
	sb.WriteString("chore(release): bump package versions\n")
	for _, bump := range bumps {
		sb.WriteString(fmt.Sprintf("\n- %s: %s -> %s", bump.Package, bump.From, bump.To))
	}
	return sb.String()
}
