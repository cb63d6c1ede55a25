package model

import (
	"unicode"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/goerr/v2"
)

// Version is an immutable semantic version. The zero value is not a valid version.
type Version struct {
	v *semver.Version
}

// ParseVersion parses text as a semantic version. A single leading non-numeric
// marker such as "v" is stripped before parsing.
func ParseVersion(text string) (Version, error) {
	trimmed := text
	if r := []rune(text); len(r) > 0 && !unicode.IsDigit(r[0]) {
		trimmed = string(r[1:])
	}

	sv, err := semver.StrictNewVersion(trimmed)
	if err != nil {
		return Version{}, goerr.Wrap(ErrInvalidVersion, err.Error(), goerr.V("text", text))
	}

	return Version{v: sv}, nil
}

// MustParseVersion is ParseVersion for constants. It panics on error.
func MustParseVersion(text string) Version {
	v, err := ParseVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v was never parsed
func (v Version) IsZero() bool {
	return v.v == nil
}

func (v Version) Major() uint64 { return v.v.Major() }
func (v Version) Minor() uint64 { return v.v.Minor() }
func (v Version) Patch() uint64 { return v.v.Patch() }

// Prerelease returns the dot-joined pre-release identifiers, or empty
func (v Version) Prerelease() string { return v.v.Prerelease() }

// Metadata returns the build metadata, or empty
func (v Version) Metadata() string { return v.v.Metadata() }

// Compare returns -1, 0 or 1 by semantic version precedence. Build metadata is ignored.
func (v Version) Compare(other Version) int {
	return v.v.Compare(other.v)
}

// GreaterThan reports whether v has higher precedence than other
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Equal reports equal precedence
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// NextPatch returns major.minor.(patch+1) without pre-release or build metadata.
// Unlike semver's IncPatch, the patch number is always incremented.
func (v Version) NextPatch() Version {
	return Version{v: semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")}
}

// String renders the version without any prefix
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Tag renders the release tag name for the version
func (v Version) Tag() string {
	return "v" + v.String()
}
