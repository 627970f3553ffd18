package manifest

import "strings"

// AliasKind discriminates channel aliases.
type AliasKind int

const (
	// AliasStable marks the latest published stable channel. At most
	// one channel in a manifest carries it.
	AliasStable AliasKind = iota

	// AliasNightly marks a nightly channel. An empty tag means the
	// current nightly; a tag names a dated one.
	AliasNightly

	// AliasTag is a free-form custom alias.
	AliasTag
)

// ChannelAlias is a human-friendly secondary name for a channel.
type ChannelAlias struct {
	Kind AliasKind

	// Tag is the nightly suffix for AliasNightly and the alias text
	// for AliasTag.
	Tag string
}

// Stable returns the stable alias.
func Stable() ChannelAlias {
	return ChannelAlias{Kind: AliasStable}
}

// Nightly returns the nightly alias with an optional tag.
func Nightly(tag string) ChannelAlias {
	return ChannelAlias{Kind: AliasNightly, Tag: tag}
}

// ParseAlias interprets an alias string. "stable" and "nightly" are
// reserved, "nightly-SUFFIX" names a dated nightly and anything else
// is a custom tag.
func ParseAlias(s string) ChannelAlias {
	switch {
	case s == "stable":
		return ChannelAlias{Kind: AliasStable}
	case s == "nightly":
		return ChannelAlias{Kind: AliasNightly}
	case strings.HasPrefix(s, "nightly-"):
		return ChannelAlias{Kind: AliasNightly, Tag: strings.TrimPrefix(s, "nightly-")}
	default:
		return ChannelAlias{Kind: AliasTag, Tag: s}
	}
}

func (a ChannelAlias) String() string {
	switch a.Kind {
	case AliasStable:
		return "stable"
	case AliasNightly:
		if a.Tag == "" {
			return "nightly"
		}
		return "nightly-" + a.Tag
	default:
		return a.Tag
	}
}

// IsStable reports whether this is the stable alias.
func (a ChannelAlias) IsStable() bool {
	return a.Kind == AliasStable
}

// IsNightly reports whether this is any nightly alias.
func (a ChannelAlias) IsNightly() bool {
	return a.Kind == AliasNightly
}

// IsCurrentNightly reports whether this is the untagged nightly alias.
func (a ChannelAlias) IsCurrentNightly() bool {
	return a.Kind == AliasNightly && a.Tag == ""
}

// MarshalText encodes the alias as its string form.
func (a ChannelAlias) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes the string form.
func (a *ChannelAlias) UnmarshalText(text []byte) error {
	*a = ParseAlias(string(text))
	return nil
}
