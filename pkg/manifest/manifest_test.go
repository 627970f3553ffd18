package manifest_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/toolup/pkg/manifest"
)

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	require.NoError(t, err)
	return v
}

func stableChannel(t *testing.T, version string, components ...manifest.Component) manifest.Channel {
	t.Helper()
	alias := manifest.Stable()
	return manifest.Channel{Name: mustVersion(t, version), Alias: &alias, Components: components}
}

func nightlyChannel(t *testing.T, version, tag string) manifest.Channel {
	t.Helper()
	alias := manifest.Nightly(tag)
	return manifest.Channel{Name: mustVersion(t, version), Alias: &alias}
}

func registryComponent(t *testing.T, name, version string) manifest.Component {
	t.Helper()
	return manifest.Component{
		Name:   name,
		Source: &manifest.Registry{Package: name, Version: mustVersion(t, version)},
	}
}

func TestLatestStablePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		channels []manifest.Channel
		want     string
	}{
		{
			name: "explicit alias wins regardless of version ordering",
			channels: []manifest.Channel{
				{Name: mustVersion(t, "0.16.0")},
				stableChannel(t, "0.14.0"),
			},
			want: "0.14.0",
		},
		{
			name: "unaliased channels fall back to highest precedence",
			channels: []manifest.Channel{
				{Name: mustVersion(t, "0.14.0")},
				{Name: mustVersion(t, "0.15.0")},
			},
			want: "0.15.0",
		},
		{
			name: "prerelease of a newer version beats older releases",
			channels: []manifest.Channel{
				{Name: mustVersion(t, "0.14.0")},
				{Name: mustVersion(t, "0.15.0")},
				{Name: mustVersion(t, "0.16.0-rc.1")},
			},
			want: "0.16.0-rc.1",
		},
		{
			name: "nightlies and custom tags are excluded",
			channels: []manifest.Channel{
				nightlyChannel(t, "0.99.0", ""),
				{Name: mustVersion(t, "0.16.0-custom-build"), Alias: &manifest.ChannelAlias{Kind: manifest.AliasTag, Tag: "custom-dev-build"}},
				{Name: mustVersion(t, "0.15.0")},
			},
			want: "0.15.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := manifest.New()
			m.Channels = tt.channels
			got := m.LatestStable()
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name.String())
		})
	}
}

func TestLatestStableEmptyManifest(t *testing.T) {
	m := manifest.New()
	assert.Nil(t, m.LatestStable())
	assert.Nil(t, m.LatestNightly())
}

func TestLatestNightlyPrefersUntagged(t *testing.T) {
	m := manifest.New()
	m.Channels = []manifest.Channel{
		nightlyChannel(t, "0.17.0", "2025-03-01"),
		nightlyChannel(t, "0.16.0", ""),
	}
	got := m.LatestNightly()
	require.NotNil(t, got)
	assert.Equal(t, "0.16.0", got.Name.String())
}

func TestLatestNightlyFallsBackToTagged(t *testing.T) {
	m := manifest.New()
	m.Channels = []manifest.Channel{
		nightlyChannel(t, "0.15.0", "2025-01-01"),
		nightlyChannel(t, "0.17.0", "2025-03-01"),
		stableChannel(t, "0.18.0"),
	}
	got := m.LatestNightly()
	require.NotNil(t, got)
	assert.Equal(t, "0.17.0", got.Name.String())
}

func TestAddChannelStripsStableAliasFromPreviousHolders(t *testing.T) {
	m := manifest.New()
	m.AddChannel(stableChannel(t, "0.14.0"))
	m.AddChannel(stableChannel(t, "0.15.0"))

	var holders []string
	for i := range m.Channels {
		if m.Channels[i].IsStable() {
			holders = append(holders, m.Channels[i].Name.String())
		}
	}
	assert.Equal(t, []string{"0.15.0"}, holders)

	// The old channel is still present, just demoted.
	require.NotNil(t, m.ChannelByName(mustVersion(t, "0.14.0")))
	assert.Nil(t, m.ChannelByName(mustVersion(t, "0.14.0")).Alias)
}

func TestAddChannelRepairsMultipleStableHolders(t *testing.T) {
	m := manifest.New()
	// Hand-build an inconsistent manifest with two stable holders.
	m.Channels = []manifest.Channel{
		stableChannel(t, "0.13.0"),
		stableChannel(t, "0.14.0"),
	}
	m.AddChannel(stableChannel(t, "0.15.0"))

	count := 0
	for i := range m.Channels {
		if m.Channels[i].IsStable() {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAddChannelReplacesSameVersion(t *testing.T) {
	m := manifest.New()
	m.AddChannel(stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0")))
	m.AddChannel(stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.1.0")))

	require.Len(t, m.Channels, 1)
	comp := m.Channels[0].Component("vm")
	require.NotNil(t, comp)
	registry := comp.Source.(*manifest.Registry)
	assert.Equal(t, "1.1.0", registry.Version.String())
}

func TestAddChannelIsIdempotent(t *testing.T) {
	m := manifest.New()
	ch := stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0"))
	m.AddChannel(ch)
	m.AddChannel(ch)

	require.Len(t, m.Channels, 1)
	assert.True(t, m.Channels[0].IsStable())
}

func TestRemoveChannel(t *testing.T) {
	m := manifest.New()
	m.AddChannel(stableChannel(t, "0.14.0"))
	m.AddChannel(nightlyChannel(t, "0.15.0", ""))

	m.RemoveChannel(mustVersion(t, "0.14.0"))
	require.Len(t, m.Channels, 1)
	assert.Equal(t, "0.15.0", m.Channels[0].Name.String())

	// Removing an absent version is a no-op.
	m.RemoveChannel(mustVersion(t, "9.9.9"))
	assert.Len(t, m.Channels, 1)
}

func TestChannelSelectionDispatch(t *testing.T) {
	m := manifest.New()
	m.Channels = []manifest.Channel{
		stableChannel(t, "0.14.0"),
		nightlyChannel(t, "0.15.0", ""),
		nightlyChannel(t, "0.16.0", "2025-03-01"),
		{Name: mustVersion(t, "0.17.0"), Alias: &manifest.ChannelAlias{Kind: manifest.AliasTag, Tag: "experimental"}},
		{Name: mustVersion(t, "0.18.0")},
	}

	tests := []struct {
		token string
		want  string
	}{
		{"stable", "0.14.0"},
		{"nightly", "0.15.0"},
		{"nightly-2025-03-01", "0.16.0"},
		{"experimental", "0.17.0"},
		{"0.18.0", "0.18.0"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got := m.Channel(manifest.ParseUserChannel(tt.token))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name.String())
		})
	}

	assert.Nil(t, m.Channel(manifest.ParseUserChannel("no-such-tag")))
	assert.Nil(t, m.Channel(manifest.ParseUserChannel("9.9.9")))
}

func TestIsLatestStable(t *testing.T) {
	m := manifest.New()
	old := stableChannel(t, "0.14.0")
	m.AddChannel(old)
	current := stableChannel(t, "0.15.0")
	m.AddChannel(current)

	assert.True(t, m.IsLatestStable(&current))
	assert.False(t, m.IsLatestStable(&old))
	assert.False(t, m.IsLatestStable(nil))
}

func TestIsLatestStableAgainstUnaliasedChannels(t *testing.T) {
	m := manifest.New()
	m.Channels = []manifest.Channel{{Name: mustVersion(t, "0.14.0")}}

	newer := manifest.Channel{Name: mustVersion(t, "0.15.0")}
	older := manifest.Channel{Name: mustVersion(t, "0.13.0")}
	assert.True(t, m.IsLatestStable(&newer))
	assert.False(t, m.IsLatestStable(&older))

	// Vacuously true when nothing is stable-eligible.
	empty := manifest.New()
	assert.True(t, empty.IsLatestStable(&older))
}

func TestAddChannelStripsStableWhenNewcomerOutranks(t *testing.T) {
	m := manifest.New()
	m.AddChannel(stableChannel(t, "0.15.0"))

	// The newcomer carries no alias but outranks the holder, so the
	// alias comes off and the fallback ordering takes over.
	m.AddChannel(manifest.Channel{Name: mustVersion(t, "0.16.0")})

	for i := range m.Channels {
		assert.False(t, m.Channels[i].IsStable(), "channel %s should not hold the stable alias", m.Channels[i].Name)
	}
	latest := m.LatestStable()
	require.NotNil(t, latest)
	assert.Equal(t, "0.16.0", latest.Name.String())
}
