// Package config loads the keyplate configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/keyplate/config.toml
// (~/.config/keyplate/config.toml when XDG_CONFIG_HOME is unset). A missing
// file is not an error; Load returns [Default]. Keys the loader does not
// know are rejected so typos do not silently fall back to defaults.
//
//	[plate]
//	unit = 19.05
//	margin = 3.0
//	stabilizer = "kad"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/keyplate/pkg/cache"
	"github.com/matzehuels/keyplate/pkg/pipeline"
	"github.com/matzehuels/keyplate/pkg/plate"
)

const appName = "keyplate"

// DefaultAddr is the listen address for the HTTP server.
const DefaultAddr = "localhost:8080"

// Config is the decoded configuration file.
type Config struct {
	Plate  Plate  `toml:"plate"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Plate holds default plate parameters. Pointer fields distinguish "unset"
// from an explicit zero.
type Plate struct {
	Unit         float64  `toml:"unit"`
	Margin       *float64 `toml:"margin"`
	Thickness    float64  `toml:"thickness"`
	SwitchCutout float64  `toml:"switch_cutout"`
	CornerRadius *float64 `toml:"corner_radius"`
	Stabilizer   string   `toml:"stabilizer"`
	Threshold    float64  `toml:"threshold"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`

	// LogFile, when set, receives a copy of the server log, rotated at
	// LogMaxSizeMB and pruned to LogMaxBackups old files.
	LogFile       string `toml:"log_file"`
	LogMaxSizeMB  int    `toml:"log_max_size_mb"`
	LogMaxBackups int    `toml:"log_max_backups"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Plate: Plate{
			Unit:       plate.DefaultUnit,
			Stabilizer: pipeline.DefaultStabilizer,
		},
		Cache:  Cache{Backend: cache.BackendFile},
		Server: Server{Addr: DefaultAddr, LogMaxSizeMB: 10, LogMaxBackups: 3},
	}
}

// Path returns the default configuration file path.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path on top of [Default]. An empty path means
// [Path]. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be caught later by the pipeline.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if c.Plate.Stabilizer != "" {
		if err := pipeline.ValidateStabilizer(c.Plate.Stabilizer); err != nil {
			return fmt.Errorf("plate.stabilizer: %w", err)
		}
	}
	return nil
}

// Apply copies the plate defaults into opts where opts leaves them unset.
func (p Plate) Apply(opts *pipeline.Options) {
	if opts.Unit == 0 {
		opts.Unit = p.Unit
	}
	if opts.Margin == nil && p.Margin != nil {
		opts.Margin = pipeline.Float(*p.Margin)
	}
	if opts.Thickness == 0 {
		opts.Thickness = p.Thickness
	}
	if opts.SwitchCutout == 0 {
		opts.SwitchCutout = p.SwitchCutout
	}
	if opts.CornerRadius == nil && p.CornerRadius != nil {
		opts.CornerRadius = pipeline.Float(*p.CornerRadius)
	}
	if opts.Stabilizer == "" {
		opts.Stabilizer = p.Stabilizer
	}
	if opts.Threshold == 0 {
		opts.Threshold = p.Threshold
	}
}

// CacheOptions converts the cache section for [cache.Open]. defaultDir is
// used when the file does not name a directory.
func (c Cache) CacheOptions(defaultDir string) cache.Options {
	dir := c.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Options{
		Backend: c.Backend,
		Dir:     dir,
		Redis: cache.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
	}
}
