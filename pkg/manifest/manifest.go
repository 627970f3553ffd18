package manifest

import (
	"time"

	"github.com/Masterminds/semver/v3"
)

// ManifestVersion is the schema version this codebase reads and
// writes.
const ManifestVersion = "1.0.0"

// Manifest is the full channel catalog, either the published upstream
// one or the local record of installed channels.
type Manifest struct {
	SchemaVersion string    `json:"manifest_version"`
	Date          int64     `json:"date"`
	Channels      []Channel `json:"channels"`
}

// New returns an empty manifest stamped with the current time.
func New() *Manifest {
	return &Manifest{
		SchemaVersion: ManifestVersion,
		Date:          time.Now().Unix(),
	}
}

// LatestStable returns the channel that explicitly carries the stable
// alias, regardless of version ordering. When no channel holds the
// alias it falls back to the stable-eligible channel with the highest
// semver precedence, or nil when none exists.
func (m *Manifest) LatestStable() *Channel {
	for i := range m.Channels {
		if m.Channels[i].IsStable() {
			return &m.Channels[i]
		}
	}
	var best *Channel
	for i := range m.Channels {
		ch := &m.Channels[i]
		if !ch.IsStableEligible() {
			continue
		}
		if best == nil || ch.Name.GreaterThan(best.Name) {
			best = ch
		}
	}
	return best
}

// LatestNightly returns the untagged nightly channel when one exists,
// falling back to the nightly channel with the highest semver
// precedence, tagged or not. Nil when the manifest has no nightlies.
func (m *Manifest) LatestNightly() *Channel {
	for i := range m.Channels {
		if m.Channels[i].IsCurrentNightly() {
			return &m.Channels[i]
		}
	}
	var best *Channel
	for i := range m.Channels {
		ch := &m.Channels[i]
		if !ch.IsNightly() {
			continue
		}
		if best == nil || ch.Name.GreaterThan(best.Name) {
			best = ch
		}
	}
	return best
}

// NamedNightly returns the nightly channel with the given tag, or nil.
func (m *Manifest) NamedNightly(tag string) *Channel {
	for i := range m.Channels {
		ch := &m.Channels[i]
		if ch.IsNightly() && ch.Alias.Tag == tag {
			return ch
		}
	}
	return nil
}

// NamedTag returns the channel carrying the given custom alias, or
// nil.
func (m *Manifest) NamedTag(tag string) *Channel {
	for i := range m.Channels {
		ch := &m.Channels[i]
		if ch.Alias != nil && ch.Alias.Kind == AliasTag && ch.Alias.Tag == tag {
			return ch
		}
	}
	return nil
}

// ChannelByName returns the channel with the exact version, or nil.
func (m *Manifest) ChannelByName(version *semver.Version) *Channel {
	for i := range m.Channels {
		if m.Channels[i].Name.String() == version.String() {
			return &m.Channels[i]
		}
	}
	return nil
}

// Channel resolves a user selection against the catalog. Exact
// versions look up by name, stable and nightly follow the aliases and
// other strings try dated nightlies before custom tags.
func (m *Manifest) Channel(selection UserChannel) *Channel {
	switch selection.Kind {
	case UserVersion:
		return m.ChannelByName(selection.Version)
	case UserStable:
		return m.LatestStable()
	case UserNightly:
		return m.LatestNightly()
	default:
		if suffix, ok := selection.NightlySuffix(); ok {
			if ch := m.NamedNightly(suffix); ch != nil {
				return ch
			}
		}
		return m.NamedTag(selection.Name)
	}
}

// IsLatestStable reports whether the given channel's version is at
// least as high as every stable-eligible channel already present.
// Vacuously true for an empty manifest.
func (m *Manifest) IsLatestStable(ch *Channel) bool {
	if ch == nil {
		return false
	}
	for i := range m.Channels {
		other := &m.Channels[i]
		if !other.IsStableEligible() {
			continue
		}
		if ch.Name.LessThan(other.Name) {
			return false
		}
	}
	return true
}

// AddChannel inserts a channel, replacing any existing channel with
// the same version. When the incoming channel becomes the latest
// stable the alias is first stripped from every other holder, keeping
// it unique regardless of version overlap.
func (m *Manifest) AddChannel(ch Channel) {
	if m.IsLatestStable(&ch) {
		for i := range m.Channels {
			if m.Channels[i].IsStable() {
				m.Channels[i].Alias = nil
			}
		}
	}
	kept := m.Channels[:0]
	for i := range m.Channels {
		if m.Channels[i].Name.String() != ch.Name.String() {
			kept = append(kept, m.Channels[i])
		}
	}
	m.Channels = append(kept, ch)
}

// RemoveChannel drops the channel with the given version. Removing an
// absent version is a no-op.
func (m *Manifest) RemoveChannel(version *semver.Version) {
	kept := m.Channels[:0]
	for i := range m.Channels {
		if m.Channels[i].Name.String() != version.String() {
			kept = append(kept, m.Channels[i])
		}
	}
	m.Channels = kept
}
