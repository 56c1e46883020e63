package sandcore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBundle builds a small valid bundle: base:empty (id 0), sand (a
// falling powder), water (a liquid), and a sand+water -> mud reaction.
func testBundle(t *testing.T) []byte {
	t.Helper()
	b := bundleJSON{
		FormatVersion: 1,
		Packs:         []bundlePackJSON{{Key: "base"}},
		Elements: []bundleElementJSON{
			{ID: 0, Key: "base:empty", Name: "Empty", Pack: "base", Category: "solid"},
			{
				ID: 1, Key: "base:sand", Name: "Sand", Pack: "base", Category: "powder",
				Color: 0xFFD2B48C, Dispersion: 0, DefaultTemp: 20, HeatConductivity: 0.3,
			},
			{
				ID: 2, Key: "base:water", Name: "Water", Pack: "base", Category: "liquid",
				Color: 0xFF3060F0, Dispersion: 5, DefaultTemp: 20, HeatConductivity: 0.6,
			},
			{ID: 3, Key: "base:mud", Name: "Mud", Pack: "base", Category: "powder", Color: 0xFF5B3A29},
			{
				ID: 4, Key: "base:rock", Name: "Rock", Pack: "base", Category: "solid",
				Color: 0xFF808080, DefaultTemp: 20, HeatConductivity: 0.2,
			},
		},
		Reactions: []bundleReactionJSON{
			{
				Aggressor: "base:sand", Victim: "base:water", Chance: 1,
				ResultAggressor: strPtr("base:mud"), ResultVictim: strPtr("base:empty"),
			},
		},
	}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	return data
}

func strPtr(s string) *string { return &s }

func TestLoadBundle_Basic(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	assert.Equal(t, 5, table.ElementCount())

	sand, ok := table.ElementByKey("base:sand")
	require.True(t, ok)
	assert.Equal(t, CategoryPowder, sand.Category)

	rxn, ok := table.ReactionFor(sand.ID, 2)
	require.True(t, ok)
	assert.Equal(t, uint8(3), rxn.ResultAggressorID)
	assert.Equal(t, EmptyID, rxn.ResultVictimID)
}

func TestLoadBundle_MissingEmpty(t *testing.T) {
	b := bundleJSON{
		FormatVersion: 1,
		Elements:      []bundleElementJSON{{ID: 1, Key: "base:sand", Category: "powder"}},
	}
	data, _ := json.Marshal(b)
	_, err := LoadBundle("test", data)
	require.Error(t, err)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ContentBundleInvalid, ee.Kind)
}

func TestLoadBundle_DuplicateID(t *testing.T) {
	b := bundleJSON{
		FormatVersion: 1,
		Elements: []bundleElementJSON{
			{ID: 0, Key: "base:empty", Category: "solid"},
			{ID: 1, Key: "base:a", Category: "powder"},
			{ID: 1, Key: "base:b", Category: "powder"},
		},
	}
	data, _ := json.Marshal(b)
	_, err := LoadBundle("test", data)
	require.Error(t, err)
}

func TestLoadBundle_CyclicPacks(t *testing.T) {
	b := bundleJSON{
		FormatVersion: 1,
		Packs: []bundlePackJSON{
			{Key: "a", DependsOn: []string{"b"}},
			{Key: "b", DependsOn: []string{"a"}},
		},
		Elements: []bundleElementJSON{{ID: 0, Key: "base:empty", Category: "solid"}},
	}
	data, _ := json.Marshal(b)
	_, err := LoadBundle("test", data)
	require.Error(t, err)
}

func TestColorVariant_DeterministicAcrossLoads(t *testing.T) {
	data := testBundle(t)
	t1, err := LoadBundle("test", data)
	require.NoError(t, err)
	t2, err := LoadBundle("test", data)
	require.NoError(t, err)

	for seed := 0; seed < 32; seed++ {
		assert.Equal(t, t1.ColorVariant(1, uint8(seed)), t2.ColorVariant(1, uint8(seed)))
	}
}
