package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/toolup/pkg/manifest"
)

func TestChannelEqualIgnoresAliasAndOrder(t *testing.T) {
	vm := registryComponent(t, "vm", "1.0.0")
	compiler := registryComponent(t, "compiler", "1.0.0")

	withAlias := stableChannel(t, "0.15.0", vm, compiler)
	withoutAlias := manifest.Channel{
		Name:       mustVersion(t, "0.15.0"),
		Components: []manifest.Component{compiler, vm},
	}
	assert.True(t, withAlias.Equal(&withoutAlias))
	assert.True(t, withoutAlias.Equal(&withAlias))
}

func TestChannelEqualDetectsComponentDifferences(t *testing.T) {
	base := stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0"))

	differentSet := stableChannel(t, "0.15.0", registryComponent(t, "compiler", "1.0.0"))
	assert.False(t, base.Equal(&differentSet))

	differentVersion := stableChannel(t, "0.15.0", registryComponent(t, "vm", "2.0.0"))
	assert.False(t, base.Equal(&differentVersion))

	differentName := stableChannel(t, "0.16.0", registryComponent(t, "vm", "1.0.0"))
	assert.False(t, base.Equal(&differentName))

	extra := stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0"), registryComponent(t, "compiler", "1.0.0"))
	assert.False(t, base.Equal(&extra))
}

func TestChannelComponentLookup(t *testing.T) {
	ch := stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0"))
	require.NotNil(t, ch.Component("vm"))
	assert.Nil(t, ch.Component("nope"))

	// The pointer aims into the channel, mutations stick.
	ch.Component("vm").Initialized = true
	assert.True(t, ch.Components[0].Initialized)
}

func TestSubsetPullsRequirementsTransitively(t *testing.T) {
	runtime := registryComponent(t, "runtime", "1.0.0")
	stdlib := registryComponent(t, "stdlib", "1.0.0")
	stdlib.Requires = []string{"runtime"}
	vm := registryComponent(t, "vm", "1.0.0")
	vm.Requires = []string{"stdlib"}
	compiler := registryComponent(t, "compiler", "1.0.0")

	ch := stableChannel(t, "0.15.0", runtime, stdlib, vm, compiler)
	subset, warnings := ch.Subset([]string{"vm"})

	assert.Empty(t, warnings)
	require.NotNil(t, subset)
	assert.NotNil(t, subset.Component("vm"))
	assert.NotNil(t, subset.Component("stdlib"))
	assert.NotNil(t, subset.Component("runtime"))
	assert.Nil(t, subset.Component("compiler"))
	assert.True(t, subset.IsPartial())
}

func TestSubsetWarnsAboutUnknownComponents(t *testing.T) {
	ch := stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0"))
	subset, warnings := ch.Subset([]string{"vm", "ghost"})

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "ghost")
	require.NotNil(t, subset.Component("vm"))
}

func TestSubsetOfEverythingIsNotPartial(t *testing.T) {
	ch := stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0"))
	subset, warnings := ch.Subset([]string{"vm"})
	assert.Empty(t, warnings)
	assert.False(t, subset.IsPartial())
}

func TestChannelAliases(t *testing.T) {
	vm := registryComponent(t, "vm", "1.0.0")
	vm.Aliases = map[string][]manifest.CommandStep{
		"debug": {manifest.Resolve("vm"), manifest.Verbatim("debug")},
	}
	ch := stableChannel(t, "0.15.0", vm)

	aliases := ch.Aliases()
	require.Contains(t, aliases, "debug")
	assert.Len(t, aliases["debug"], 2)
}

func TestChannelCloneIsIndependent(t *testing.T) {
	ch := stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0"))
	clone := ch.Clone()
	clone.Component("vm").Initialized = true
	clone.Alias = nil

	assert.False(t, ch.Components[0].Initialized)
	assert.True(t, ch.IsStable())
}

func TestChannelAliasPredicates(t *testing.T) {
	stable := stableChannel(t, "0.15.0")
	assert.True(t, stable.IsStable())
	assert.False(t, stable.IsNightly())

	nightly := nightlyChannel(t, "0.16.0", "")
	assert.True(t, nightly.IsNightly())
	assert.True(t, nightly.IsCurrentNightly())

	dated := nightlyChannel(t, "0.16.0", "2025-03-01")
	assert.True(t, dated.IsNightly())
	assert.False(t, dated.IsCurrentNightly())

	bare := manifest.Channel{Name: mustVersion(t, "0.17.0")}
	assert.False(t, bare.IsStable())
	assert.False(t, bare.IsNightly())

	// Unaliased and stable-aliased channels count toward the stable
	// ordering, nightlies and custom tags do not.
	assert.True(t, bare.IsStableEligible())
	assert.True(t, stable.IsStableEligible())
	assert.False(t, nightly.IsStableEligible())
	tagged := manifest.Channel{Name: mustVersion(t, "0.18.0"), Alias: &manifest.ChannelAlias{Kind: manifest.AliasTag, Tag: "experimental"}}
	assert.False(t, tagged.IsStableEligible())
}
