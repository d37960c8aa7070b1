package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags are the command line overrides. Zero values leave the loaded
// configuration alone.
type Flags struct {
	ConfigPath string
	Debug      bool
	Scale      float64
	Kernel     string
	CacheStore string
	CachePath  string
	SourceDir  string
	SourceURL  string
	Timeout    time.Duration
	Workers    int
	LogFile    string
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	fs.Float64Var(&f.Scale, "scale", 0, "scale applied to facet distances")
	fs.StringVar(&f.Kernel, "kernel", "", "geometry kernel: bsp, sdfx or manifold")
	fs.StringVar(&f.CacheStore, "cache-store", "", "slot store: memory, dir or bolt")
	fs.StringVar(&f.CachePath, "cache-path", "", "slot store directory or database file")
	fs.StringVar(&f.SourceDir, "source-dir", "", "directory of cut descriptions")
	fs.StringVar(&f.SourceURL, "source-url", "", "base URL of cut descriptions")
	fs.DurationVar(&f.Timeout, "timeout", 0, "fetch timeout")
	fs.IntVar(&f.Workers, "workers", 0, "parallel prebuild workers")
	fs.StringVar(&f.LogFile, "log-file", "", "also log to this file")
}

func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Scale > 0 {
		cfg.Engine.Scale = f.Scale
	}
	if f.Kernel != "" {
		cfg.Engine.Kernel = f.Kernel
	}
	if f.CacheStore != "" {
		cfg.Cache.Store = f.CacheStore
	}
	if f.CachePath != "" {
		cfg.Cache.Path = f.CachePath
	}
	if f.SourceDir != "" {
		cfg.Source.Dir = f.SourceDir
	}
	if f.SourceURL != "" {
		cfg.Source.BaseURL = f.SourceURL
	}
	if f.Timeout > 0 {
		cfg.Source.Timeout = f.Timeout
	}
	if f.Workers > 0 {
		cfg.Prebuild.Workers = f.Workers
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
