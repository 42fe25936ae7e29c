// Package release contains the push-time release gate: change detection
// per package, automatic patch bumps, and the orchestrator that ties
// detection, classification, validation, and the final governance commit
// together.
package release

import (
	"context"

	"github.com/coopersmall/semgate/internal/policy"
	"github.com/coopersmall/semgate/internal/semver"
	"github.com/coopersmall/semgate/internal/workspace"
)

// SCM is the source-control capability surface the gate consumes. It is
// satisfied by internal/git and by nothing else in production; tests run
// against real scratch repositories.
type SCM interface {
	RepoPath() string
	CurrentBranch(ctx context.Context) (string, error)
	RefExists(ctx context.Context, ref string) bool
	MergeBase(ctx context.Context, a, b string) (string, error)
	ChangedFiles(ctx context.Context, from, scope string) ([]string, error)
	ShowFile(ctx context.Context, ref, path string) ([]byte, error)
	CommitsTouching(ctx context.Context, from, to, path string) ([]string, error)
	CommitFiles(ctx context.Context, hash string) ([]string, error)
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) (string, error)
}

// Descriptor identifies one scannable unit: a member package, or the
// workspace aggregate whose scope is the repository root minus the
// member subtrees.
type Descriptor struct {
	Name      string
	Manifest  string
	Subtree   string
	Aggregate bool

	// Exclude lists subtrees outside the aggregate's scope. Only set
	// when Aggregate is true.
	Exclude []string
}

// Descriptors builds the scan list from the selected member packages,
// in declared order, with the workspace aggregate appended last.
func Descriptors(cfg workspace.Config, selected []workspace.Package) []Descriptor {
	descs := make([]Descriptor, 0, len(selected)+1)
	for _, pkg := range selected {
		descs = append(descs, Descriptor{
			Name:     pkg.Name,
			Manifest: pkg.Manifest,
			Subtree:  pkg.Subtree,
		})
	}

	exclude := make([]string, 0, len(cfg.Packages))
	for _, pkg := range cfg.Packages {
		exclude = append(exclude, pkg.Subtree)
	}
	descs = append(descs, Descriptor{
		Name:      workspace.AggregateName,
		Manifest:  cfg.WorkspaceManifest,
		Subtree:   ".",
		Aggregate: true,
		Exclude:   exclude,
	})
	return descs
}

// Status summarizes what the gate did with one package.
type Status string

const (
	// StatusSkipped means no source changed; the version was not touched.
	StatusSkipped Status = "skipped"

	// StatusNoChange means the author already moved the version ahead
	// (or the package is new at this push); nothing to do.
	StatusNoChange Status = "no-change"

	// StatusAutoBump means the gate synthesized a patch bump.
	StatusAutoBump Status = "auto-patch"

	// StatusManualBump means a deliberate major or minor bump was found
	// and validated.
	StatusManualBump Status = "manual"
)

// Outcome is the per-package result of one run.
type Outcome struct {
	Package string         `yaml:"package"`
	Status  Status         `yaml:"status"`
	Class   policy.Class   `yaml:"-"`
	Current semver.Version `yaml:"-"`
	New     semver.Version `yaml:"-"`

	// String forms for report serialization.
	CurrentText string `yaml:"current"`
	NewText     string `yaml:"new,omitempty"`
}

// Result is what one orchestrator run produced.
type Result struct {
	RunID           string    `yaml:"run_id"`
	Branch          string    `yaml:"branch"`
	ReferenceBranch string    `yaml:"reference_branch"`
	Bootstrap       bool      `yaml:"bootstrap,omitempty"`
	Outcomes        []Outcome `yaml:"packages"`
	Committed       bool      `yaml:"committed"`
	CommitHash      string    `yaml:"commit_hash,omitempty"`
	DryRun          bool      `yaml:"dry_run,omitempty"`
}

// Bumped returns the outcomes that produced an automatic patch bump.
func (r *Result) Bumped() []Outcome {
	var bumped []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusAutoBump {
			bumped = append(bumped, o)
		}
	}
	return bumped
}
