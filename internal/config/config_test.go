package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/keyplate/pkg/cache"
	"github.com/matzehuels/keyplate/pkg/pipeline"
	"github.com/matzehuels/keyplate/pkg/plate"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file should give defaults (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[plate]
unit = 19.0
margin = 0.0
stabilizer = "none"
threshold = 3.0

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2
prefix = "team"

[server]
addr = ":9000"
log_file = "/var/log/keyplate.log"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Plate.Unit != 19.0 {
		t.Errorf("Plate.Unit = %g", cfg.Plate.Unit)
	}
	if cfg.Plate.Margin == nil || *cfg.Plate.Margin != 0 {
		t.Errorf("Plate.Margin = %v, want explicit 0", cfg.Plate.Margin)
	}
	if cfg.Plate.CornerRadius != nil {
		t.Errorf("Plate.CornerRadius = %v, want unset", *cfg.Plate.CornerRadius)
	}
	if cfg.Plate.Stabilizer != "none" || cfg.Plate.Threshold != 3 {
		t.Errorf("Plate = %+v", cfg.Plate)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.RedisDB != 2 || cfg.Cache.Prefix != "team" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.LogFile != "/var/log/keyplate.log" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.LogMaxSizeMB != 10 || cfg.Server.LogMaxBackups != 3 {
		t.Errorf("Server rotation defaults lost: %+v", cfg.Server)
	}
}

func TestLoadKeepsDefaultsForOmittedKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[server]\naddr = \":1\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Plate.Unit != plate.DefaultUnit || cfg.Plate.Stabilizer != pipeline.DefaultStabilizer {
		t.Errorf("Plate defaults lost: %+v", cfg.Plate)
	}
	if cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[plate\n", "read config"},
		{"unknown key", "[plate]\nunits = 19\n", "plate.units"},
		{"unknown section", "[render]\nstyle = 1\n", "unknown keys"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "unknown backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", "redis_addr"},
		{"bad stabilizer", "[plate]\nstabilizer = \"costar\"\n", "plate.stabilizer"},
		{"wrong type", "[plate]\nunit = \"big\"\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMemoryBackend(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[cache]\nbackend = \"memory\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Backend != cache.BackendMemory {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "keyplate", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	got, err = Path()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(got, filepath.Join(".config", "keyplate", "config.toml")) {
		t.Errorf("Path() = %q", got)
	}
}

func TestPlateApply(t *testing.T) {
	p := Plate{
		Unit:         19,
		Margin:       pipeline.Float(0),
		Thickness:    2,
		CornerRadius: pipeline.Float(1),
		Stabilizer:   "none",
	}

	opts := pipeline.Options{Thickness: 1.2, Margin: pipeline.Float(4)}
	p.Apply(&opts)

	if opts.Unit != 19 {
		t.Errorf("Unit = %g, want 19 from config", opts.Unit)
	}
	if opts.Thickness != 1.2 {
		t.Errorf("Thickness = %g, flag value should win", opts.Thickness)
	}
	if *opts.Margin != 4 {
		t.Errorf("Margin = %g, flag value should win", *opts.Margin)
	}
	if *opts.CornerRadius != 1 {
		t.Errorf("CornerRadius = %g, want 1 from config", *opts.CornerRadius)
	}
	if opts.Stabilizer != "none" {
		t.Errorf("Stabilizer = %q", opts.Stabilizer)
	}

	// The config must not alias the options.
	*opts.CornerRadius = 7
	if *p.CornerRadius != 1 {
		t.Error("Apply should copy pointer values")
	}
}

func TestCacheOptions(t *testing.T) {
	c := Cache{Backend: cache.BackendRedis, RedisAddr: "r:6379", RedisPassword: "pw", RedisDB: 3}
	got := c.CacheOptions("/tmp/default")
	want := cache.Options{
		Backend: cache.BackendRedis,
		Dir:     "/tmp/default",
		Redis:   cache.RedisOptions{Addr: "r:6379", Password: "pw", DB: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CacheOptions() (-want +got):\n%s", diff)
	}

	c.Dir = "/srv/cache"
	if got := c.CacheOptions("/tmp/default"); got.Dir != "/srv/cache" {
		t.Errorf("Dir = %q, config value should win", got.Dir)
	}
}
