package policy

import (
	"context"
	"fmt"
	"strings"
)

// History is the slice of source-control capability the validator needs:
// which commits in a range touched a path, and what one commit changed.
type History interface {
	CommitsTouching(ctx context.Context, from, to, path string) ([]string, error)
	CommitFiles(ctx context.Context, hash string) ([]string, error)
}

// Validator enforces the structural invariants of a deliberate major or
// minor bump: correct magnitude, and a bump commit isolated to the
// manifest so the bump cannot piggy-back on unrelated changes.
type Validator struct {
	history History
}

// NewValidator creates a Validator backed by the given history.
func NewValidator(history History) *Validator {
	return &Validator{history: history}
}

// Validate checks a MajorDetected or MinorDetected classification for the
// package owning manifestPath. mergeBase bounds the visible history; tip
// is the current branch head. A nil return means the bump is acceptable.
func (v *Validator) Validate(ctx context.Context, pkg, manifestPath, mergeBase, tip string, cls Classification) error {
	if cls.Class != MajorDetected && cls.Class != MinorDetected {
		return &Violation{
			Package:  pkg,
			Manifest: manifestPath,
			Reason:   fmt.Sprintf("validator invoked for %s classification", cls.Class),
		}
	}

	// Re-assert the magnitude from the raw endpoints rather than trusting
	// the classifier's label.
	if recheck := Classify(cls.Current, cls.Reference); recheck.Class != cls.Class {
		return &Violation{
			Package:  pkg,
			Manifest: manifestPath,
			Reason: fmt.Sprintf("classification mismatch: %s -> %s is %s, not %s",
				cls.Reference, cls.Current, recheck.Class, cls.Class),
		}
	}

	commits, err := v.history.CommitsTouching(ctx, mergeBase, tip, manifestPath)
	if err != nil {
		return fmt.Errorf("inspecting history of %s: %w", manifestPath, err)
	}

	switch {
	case len(commits) == 0:
		return &Violation{
			Package:  pkg,
			Manifest: manifestPath,
			Reason:   fmt.Sprintf("%s bump is not committed; commit the manifest change in isolation", cls.Class),
		}
	case len(commits) > 1:
		return &Violation{
			Package:  pkg,
			Manifest: manifestPath,
			Reason: fmt.Sprintf("manifest was changed by %d commits on this branch; a %s bump must be one isolated commit",
				len(commits), cls.Class),
		}
	}

	files, err := v.history.CommitFiles(ctx, commits[0])
	if err != nil {
		return fmt.Errorf("inspecting commit %s: %w", commits[0], err)
	}
	if len(files) != 1 || files[0] != manifestPath {
		return &Violation{
			Package:  pkg,
			Manifest: manifestPath,
			Reason: fmt.Sprintf("bump commit %s touches more than the manifest: [%s]",
				shortHash(commits[0]), strings.Join(files, ", ")),
		}
	}

	return nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
