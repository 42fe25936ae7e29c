// Package policy implements the versioning policy of the release gate:
// how a package's version delta against the reference branch is
// classified, and the structural rules a deliberate major or minor bump
// must satisfy.
package policy

import (
	"fmt"

	"github.com/coopersmall/semgate/internal/semver"
)

// Class is the outcome of comparing a changed package's current version
// against its reference version.
type Class int

const (
	// NoChange means the author already moved the version ahead of the
	// reference on their own; the gate leaves it alone.
	NoChange Class = iota

	// PatchNeeded means source changed but the version did not; the gate
	// synthesizes a patch bump.
	PatchNeeded

	// MinorDetected means a clean +1 minor bump with patch reset.
	MinorDetected

	// MajorDetected means a clean +1 major bump with minor and patch reset.
	MajorDetected

	// Invalid means the delta violates the policy: a regression, a jump
	// of more than one, or a bump that failed to reset lower fields.
	Invalid
)

// String returns a human-readable name for the class.
func (c Class) String() string {
	switch c {
	case NoChange:
		return "no-change"
	case PatchNeeded:
		return "patch-needed"
	case MinorDetected:
		return "minor"
	case MajorDetected:
		return "major"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Classification carries the class together with the two version
// endpoints it was derived from. Reason is set only for Invalid; Err
// additionally carries ErrVersionRegression when the version went
// backwards.
type Classification struct {
	Class     Class
	Current   semver.Version
	Reference semver.Version
	Reason    string
	Err       error
}

// Classify compares a package's current version against the reference
// version. It is only called for packages whose source changed, so equal
// versions mean a patch bump is needed rather than "nothing happened".
//
// Higher-order components are checked first: a major bump supersedes and
// resets the lower fields, so the classifier never reports a major and a
// minor change at the same time.
func Classify(current, reference semver.Version) Classification {
	cls := Classification{Current: current, Reference: reference}

	if current.Compare(reference) == 0 {
		cls.Class = PatchNeeded
		return cls
	}

	dMajor := current.Major - reference.Major
	dMinor := current.Minor - reference.Minor
	dPatch := current.Patch - reference.Patch

	switch {
	case dMajor < 0:
		return cls.regressed("major version regressed (%s -> %s)", reference, current)
	case dMajor > 1:
		return cls.invalid("major version jumped by more than one (%s -> %s)", reference, current)
	case dMajor == 1:
		if current.Minor != 0 || current.Patch != 0 {
			return cls.invalid("major bump must reset minor and patch to 0 (%s -> %s)", reference, current)
		}
		cls.Class = MajorDetected
		return cls
	}

	switch {
	case dMinor < 0:
		return cls.regressed("minor version regressed (%s -> %s)", reference, current)
	case dMinor > 1:
		return cls.invalid("minor version jumped by more than one (%s -> %s)", reference, current)
	case dMinor == 1:
		if current.Patch != 0 {
			return cls.invalid("minor bump must reset patch to 0 (%s -> %s)", reference, current)
		}
		cls.Class = MinorDetected
		return cls
	}

	if dPatch < 0 {
		return cls.regressed("patch version regressed (%s -> %s)", reference, current)
	}

	// The author pre-bumped the patch by hand; nothing left to do.
	cls.Class = NoChange
	return cls
}

func (c Classification) invalid(format string, args ...interface{}) Classification {
	c.Class = Invalid
	c.Reason = fmt.Sprintf(format, args...)
	return c
}

func (c Classification) regressed(format string, args ...interface{}) Classification {
	c = c.invalid(format, args...)
	c.Err = ErrVersionRegression
	return c
}
