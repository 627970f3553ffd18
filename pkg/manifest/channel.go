package manifest

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Tag annotates a channel with extra state.
type Tag string

// TagPartial marks a channel that holds only a subset of its published
// components, e.g. after a project-scoped install.
const TagPartial Tag = "partial"

// Channel is one released toolchain version together with the
// components that make it up.
type Channel struct {
	Name       *semver.Version `json:"name"`
	Alias      *ChannelAlias   `json:"alias,omitempty"`
	Tags       []Tag           `json:"tags,omitempty"`
	Components []Component     `json:"components"`
}

func (c *Channel) String() string {
	if c.Alias != nil {
		return fmt.Sprintf("%s (%s)", c.Name, c.Alias)
	}
	return c.Name.String()
}

// IsStable reports whether this channel carries the stable alias.
func (c *Channel) IsStable() bool {
	return c.Alias != nil && c.Alias.IsStable()
}

// IsStableEligible reports whether this channel counts toward the
// latest-stable ordering. Unaliased channels are plain releases and
// count; nightlies and custom tags do not.
func (c *Channel) IsStableEligible() bool {
	return c.Alias == nil || c.Alias.IsStable()
}

// IsNightly reports whether this channel carries any nightly alias.
func (c *Channel) IsNightly() bool {
	return c.Alias != nil && c.Alias.IsNightly()
}

// IsCurrentNightly reports whether this channel is the untagged
// nightly.
func (c *Channel) IsCurrentNightly() bool {
	return c.Alias != nil && c.Alias.IsCurrentNightly()
}

// IsPartial reports whether this channel holds only a component
// subset.
func (c *Channel) IsPartial() bool {
	for _, tag := range c.Tags {
		if tag == TagPartial {
			return true
		}
	}
	return false
}

// Component returns a pointer into the channel's component list, or
// nil when no component has the given name.
func (c *Channel) Component(name string) *Component {
	for i := range c.Components {
		if c.Components[i].Name == name {
			return &c.Components[i]
		}
	}
	return nil
}

// Equal compares two channels by name and component set, ignoring
// alias and tags. Component order does not matter.
func (c *Channel) Equal(other *Channel) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Name.String() != other.Name.String() {
		return false
	}
	if len(c.Components) != len(other.Components) {
		return false
	}
	for i := range c.Components {
		match := other.Component(c.Components[i].Name)
		if match == nil || !c.Components[i].Equal(match) {
			return false
		}
	}
	return true
}

// Aliases collects every extra invocable name declared by the
// channel's components, mapped to its pipeline.
func (c *Channel) Aliases() map[string][]CommandStep {
	out := make(map[string][]CommandStep)
	for i := range c.Components {
		for name, pipeline := range c.Components[i].Aliases {
			out[name] = pipeline
		}
	}
	return out
}

// Subset builds a copy of the channel restricted to the named
// components plus their transitive requirements. Names that do not
// exist in the channel are reported as warnings rather than errors,
// and the result is tagged partial when it holds fewer components
// than the source.
func (c *Channel) Subset(names []string) (*Channel, []string) {
	wanted := make(map[string]bool)
	var ordered []string
	var walk func(name string)
	walk = func(name string) {
		if wanted[name] {
			return
		}
		wanted[name] = true
		ordered = append(ordered, name)
		if comp := c.Component(name); comp != nil {
			for _, dep := range comp.Requires {
				walk(dep)
			}
		}
	}
	for _, name := range names {
		walk(name)
	}

	out := &Channel{Name: c.Name}
	if c.Alias != nil {
		alias := *c.Alias
		out.Alias = &alias
	}
	out.Tags = append([]Tag(nil), c.Tags...)

	var warnings []string
	for _, name := range ordered {
		if c.Component(name) == nil {
			warnings = append(warnings, fmt.Sprintf("channel %s has no component named %q, skipping it", c.Name, name))
		}
	}
	for i := range c.Components {
		if wanted[c.Components[i].Name] {
			out.Components = append(out.Components, c.Components[i].Clone())
		}
	}

	if len(out.Components) < len(c.Components) && !out.IsPartial() {
		out.Tags = append(out.Tags, TagPartial)
	}
	return out, warnings
}

// Clone returns a deep copy of the channel.
func (c *Channel) Clone() *Channel {
	out := &Channel{Name: c.Name}
	if c.Alias != nil {
		alias := *c.Alias
		out.Alias = &alias
	}
	out.Tags = append([]Tag(nil), c.Tags...)
	for i := range c.Components {
		out.Components = append(out.Components, c.Components[i].Clone())
	}
	return out
}
