package manifest

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// UserChannelKind discriminates the ways a user can name a channel.
type UserChannelKind int

const (
	// UserVersion names a channel by exact semver.
	UserVersion UserChannelKind = iota

	// UserStable asks for the latest stable channel.
	UserStable

	// UserNightly asks for the latest nightly channel.
	UserNightly

	// UserOther is any other string: a dated nightly like
	// "nightly-2025-03-01" or a custom tag.
	UserOther
)

// UserChannel is a channel selection as typed by the user, on the
// command line or in a project toolchain file.
type UserChannel struct {
	Kind    UserChannelKind
	Version *semver.Version
	Name    string
}

// ParseUserChannel interprets a channel token. Exact semver strings
// become UserVersion; "stable" and "nightly" are reserved; anything
// else is carried through as UserOther for alias lookup.
func ParseUserChannel(s string) UserChannel {
	switch s {
	case "stable":
		return UserChannel{Kind: UserStable}
	case "nightly":
		return UserChannel{Kind: UserNightly}
	}
	if version, err := semver.StrictNewVersion(s); err == nil {
		return UserChannel{Kind: UserVersion, Version: version}
	}
	return UserChannel{Kind: UserOther, Name: s}
}

func (u UserChannel) String() string {
	switch u.Kind {
	case UserStable:
		return "stable"
	case UserNightly:
		return "nightly"
	case UserVersion:
		if u.Version == nil {
			return ""
		}
		return u.Version.String()
	default:
		return u.Name
	}
}

// NightlySuffix returns the tag of a dated nightly selection like
// "nightly-2025-03-01", and whether this selection is one.
func (u UserChannel) NightlySuffix() (string, bool) {
	if u.Kind != UserOther || !strings.HasPrefix(u.Name, "nightly-") {
		return "", false
	}
	return strings.TrimPrefix(u.Name, "nightly-"), true
}

// MarshalText encodes the selection as its string form.
func (u UserChannel) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText decodes the string form.
func (u *UserChannel) UnmarshalText(text []byte) error {
	*u = ParseUserChannel(string(text))
	return nil
}
