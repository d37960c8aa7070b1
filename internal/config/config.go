// Package config handles gemcut configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Config holds all gemcut settings.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Cache    CacheConfig    `yaml:"cache"`
	Source   SourceConfig   `yaml:"source"`
	Prebuild PrebuildConfig `yaml:"prebuild"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EngineConfig selects the geometry kernel and how cuts are built.
type EngineConfig struct {
	Scale            float64 `yaml:"scale"`
	Kernel           string  `yaml:"kernel"` // bsp, sdfx or manifold
	CylinderSegments int     `yaml:"cylinder_segments"`
	SDFXCells        int     `yaml:"sdfx_cells"` // marching cubes cells on the longest axis
}

// CacheConfig selects the persistent slot store.
type CacheConfig struct {
	Store    string `yaml:"store"` // memory, dir or bolt
	Path     string `yaml:"path"`  // directory for dir, file for bolt
	MaxSlots int    `yaml:"max_slots"`
}

// SourceConfig says where cut descriptions come from. BaseURL wins over
// Dir when both are set.
type SourceConfig struct {
	Dir     string        `yaml:"dir"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PrebuildConfig holds batch prebuild settings.
type PrebuildConfig struct {
	OutDir  string `yaml:"out_dir"`
	Workers int    `yaml:"workers"` // 0 means one per CPU
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

const (
	KernelBSP      = "bsp"
	KernelSDFX     = "sdfx"
	KernelManifold = "manifold" // needs a build with -tags=manifold

	StoreMemory = "memory"
	StoreDir    = "dir"
	StoreBolt   = "bolt"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Scale:            1,
			Kernel:           KernelBSP,
			CylinderSegments: 64,
			SDFXCells:        200,
		},
		Cache: CacheConfig{
			Store:    StoreMemory,
			MaxSlots: 10,
		},
		Source: SourceConfig{
			Dir:     "gem_cads",
			Timeout: 10 * time.Second,
		},
		Prebuild: PrebuildConfig{
			OutDir: "geometry_cache",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Engine.Scale <= 0 {
		return fmt.Errorf("config: engine.scale must be positive, got %v", c.Engine.Scale)
	}
	switch c.Engine.Kernel {
	case KernelBSP, KernelSDFX, KernelManifold:
	default:
		return fmt.Errorf("config: engine.kernel must be bsp, sdfx or manifold, got %q", c.Engine.Kernel)
	}
	if c.Engine.CylinderSegments < 3 {
		return fmt.Errorf("config: engine.cylinder_segments must be at least 3, got %d", c.Engine.CylinderSegments)
	}
	switch c.Cache.Store {
	case StoreMemory:
	case StoreDir, StoreBolt:
		if c.Cache.Path == "" {
			return fmt.Errorf("config: cache.path is required for the %s store", c.Cache.Store)
		}
	default:
		return fmt.Errorf("config: cache.store must be memory, dir or bolt, got %q", c.Cache.Store)
	}
	if c.Cache.MaxSlots < 0 {
		return fmt.Errorf("config: cache.max_slots must not be negative, got %d", c.Cache.MaxSlots)
	}
	if c.Prebuild.Workers < 0 {
		return fmt.Errorf("config: prebuild.workers must not be negative, got %d", c.Prebuild.Workers)
	}
	return nil
}
