package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandforge/sandcore"
)

func TestLoad_DefaultsWithNoConfigFile(t *testing.T) {
	cfg, err := Load("sandcore-nonexistent", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, PresetMedium, cfg.WorldSizePreset)
	assert.Equal(t, 10, cfg.BrushSize)
	assert.Equal(t, "circle", cfg.BrushShape)
	assert.Equal(t, float32(1.0), cfg.Speed)
	assert.Equal(t, float32(9.8), cfg.GravityY)
	assert.Equal(t, ":8787", cfg.ListenAddr)
}

func TestWorldSizePreset_DimensionsFallsBackToMedium(t *testing.T) {
	w, h := WorldSizePreset("bogus").Dimensions()
	mw, mh := PresetMedium.Dimensions()
	assert.Equal(t, mw, w)
	assert.Equal(t, mh, h)
}

func TestWorldSizePreset_KnownPresetsAreOrdered(t *testing.T) {
	sw, sh := PresetSmall.Dimensions()
	mw, mh := PresetMedium.Dimensions()
	lw, lh := PresetLarge.Dimensions()
	assert.Less(t, sw*sh, mw*mh)
	assert.Less(t, mw*mh, lw*lh)
}

func TestRuntimeConfig_SettingsAppliesClampsAndRenderMode(t *testing.T) {
	cfg := &RuntimeConfig{Speed: 100, GravityY: 9.8, AmbientTemp: 20, RenderMode: "thermal"}
	s := cfg.Settings()
	assert.Equal(t, float32(8), s.Speed)
	assert.Equal(t, float32(9.8), s.GravityY)
	assert.Equal(t, sandcore.RenderThermal, s.RenderMode)
}

func TestRuntimeConfig_BrushShapeValueFallsBackToCircle(t *testing.T) {
	cfg := &RuntimeConfig{BrushShape: "unknown"}
	assert.Equal(t, 0, int(cfg.BrushShapeValue()))
}
