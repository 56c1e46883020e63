// Package config loads the runtime configuration for a sandcore host
// process, grounded on the teacher pack's use of spf13/viper for
// environment/file/flag-driven settings.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/sandforge/sandcore"
)

// WorldSizePreset names one of the fixed world dimensions offered at
// startup (spec §6.6).
type WorldSizePreset string

const (
	PresetSmall  WorldSizePreset = "small"
	PresetMedium WorldSizePreset = "medium"
	PresetLarge  WorldSizePreset = "large"
)

var presetDims = map[WorldSizePreset][2]int{
	PresetSmall:  {384, 288},
	PresetMedium: {768, 576},
	PresetLarge:  {1536, 1152},
}

// Dimensions returns the (width, height) for a world size preset, falling
// back to medium for an unrecognized value.
func (p WorldSizePreset) Dimensions() (w, h int) {
	d, ok := presetDims[p]
	if !ok {
		d = presetDims[PresetMedium]
	}
	return d[0], d[1]
}

// RuntimeConfig mirrors the defaults table of spec §6.6. Every field has a
// viper-registered default so a host can run with zero configuration.
type RuntimeConfig struct {
	WorldSizePreset WorldSizePreset `mapstructure:"world_size_preset"`
	BrushSize       int             `mapstructure:"brush_size"`
	BrushShape      string          `mapstructure:"brush_shape"`
	Speed           float32         `mapstructure:"speed"`
	GravityX        float32         `mapstructure:"gravity_x"`
	GravityY        float32         `mapstructure:"gravity_y"`
	AmbientTemp     float32         `mapstructure:"ambient_temperature"`
	RenderMode      string          `mapstructure:"render_mode"`
	DebugDirty      bool            `mapstructure:"debug_dirty"`

	ListenAddr string `mapstructure:"listen_addr"`
	ContentDir string `mapstructure:"content_dir"`
}

// Load reads configuration from (in increasing priority) built-in
// defaults, an optional YAML config file named configName (plus ".yaml")
// on the given search paths, and SANDCORE_-prefixed environment variables.
func Load(configName string, searchPaths ...string) (*RuntimeConfig, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetDefault("world_size_preset", string(PresetMedium))
	v.SetDefault("brush_size", 10)
	v.SetDefault("brush_shape", "circle")
	v.SetDefault("speed", 1.0)
	v.SetDefault("gravity_x", 0.0)
	v.SetDefault("gravity_y", 9.8)
	v.SetDefault("ambient_temperature", 20.0)
	v.SetDefault("render_mode", "normal")
	v.SetDefault("debug_dirty", false)
	v.SetDefault("listen_addr", ":8787")
	v.SetDefault("content_dir", "./content")

	v.SetEnvPrefix("SANDCORE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Settings converts the loaded config into an engine sandcore.Settings,
// ready to hand to Engine.Handle(SETTINGS).
func (c *RuntimeConfig) Settings() sandcore.Settings {
	s := sandcore.DefaultSettings()
	s.Speed = c.Speed
	s.ClampSpeed()
	s.SetGravity(c.GravityX, c.GravityY)
	s.SetAmbientTemperature(c.AmbientTemp)
	if c.RenderMode == "thermal" {
		s.RenderMode = sandcore.RenderThermal
	}
	return s
}

// BrushShapeValue parses the configured default brush shape, falling back
// to a circle for an unrecognized name.
func (c *RuntimeConfig) BrushShapeValue() sandcore.BrushShape {
	switch c.BrushShape {
	case "square":
		return sandcore.ShapeSquare
	case "line":
		return sandcore.ShapeLine
	default:
		return sandcore.ShapeCircle
	}
}
