// Package semver implements the three-component version values that
// package manifests declare. Versions are immutable; bumping always
// produces a new value.
package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	xsemver "golang.org/x/mod/semver"
)

// ErrInvalidFormat is returned when a version string is not of the form
// <major>.<minor>.<patch> with plain non-negative integer components.
var ErrInvalidFormat = errors.New("invalid version format")

// BumpKind identifies which component of a version to increment.
type BumpKind int

const (
	BumpMajor BumpKind = iota
	BumpMinor
	BumpPatch
)

// String returns the lowercase name of the bump kind.
func (k BumpKind) String() string {
	switch k {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPatch:
		return "patch"
	default:
		return fmt.Sprintf("BumpKind(%d)", int(k))
	}
}

// Version is an immutable major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse converts text of the form "1.2.3" into a Version.
// Leading zeros (other than "0" itself), signs, prerelease tags, and
// build metadata are all rejected with ErrInvalidFormat.
func Parse(text string) (Version, error) {
	parts := strings.Split(text, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := parseComponent(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
		}
		nums[i] = n
	}

	v := Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}

	// Cross-check against the canonical semver grammar. Anything our
	// parser accepts must also be valid "vX.Y.Z" semver.
	if !xsemver.IsValid("v" + v.String()) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	return v, nil
}

// parseComponent parses one numeric version component, rejecting empty
// strings, signs, and leading zeros.
func parseComponent(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty component")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, errors.New("leading zero")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errors.New("non-digit component")
		}
	}
	return strconv.Atoi(s)
}

// MustParse is Parse for trusted, constant input. It panics on error and
// exists for tests and defaults.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or +1 when v is ordered before, equal to, or
// after other. Major is compared first, then minor, then patch.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return sign(v.Major - other.Major)
	}
	if v.Minor != other.Minor {
		return sign(v.Minor - other.Minor)
	}
	return sign(v.Patch - other.Patch)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Bump returns a new Version with the given component incremented.
// A major bump resets minor and patch; a minor bump resets patch.
func (v Version) Bump(kind BumpKind) Version {
	switch kind {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}
