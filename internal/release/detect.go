package release

import (
	"context"
	"fmt"
	"strings"
)

// Detector reports whether any tracked file in a package's scope differs
// between the merge-base and the current working tree.
type Detector struct {
	scm SCM
}

// NewDetector creates a Detector backed by the given SCM.
func NewDetector(scm SCM) *Detector {
	return &Detector{scm: scm}
}

// HasChanges reports whether the package changed relative to mergeBase.
// For member packages the diff is scoped to the subtree. For the
// workspace aggregate the whole repository is diffed and files under any
// member subtree are ignored.
func (d *Detector) HasChanges(ctx context.Context, mergeBase string, desc Descriptor) (bool, error) {
	scope := desc.Subtree
	if desc.Aggregate {
		scope = ""
	}

	files, err := d.scm.ChangedFiles(ctx, mergeBase, scope)
	if err != nil {
		return false, fmt.Errorf("detecting changes for %s: %w", desc.Name, err)
	}

	if !desc.Aggregate {
		return len(files) > 0, nil
	}

	for _, file := range files {
		if !underAny(file, desc.Exclude) {
			return true, nil
		}
	}
	return false, nil
}

// underAny reports whether the repo-relative path lies inside any of the
// given subtrees.
func underAny(path string, subtrees []string) bool {
	for _, subtree := range subtrees {
		if subtree == "" || subtree == "." {
			continue
		}
		if path == subtree || strings.HasPrefix(path, subtree+"/") {
			return true
		}
	}
	return false
}
