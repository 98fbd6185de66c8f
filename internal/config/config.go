// Package config loads the flashaov project file.
//
// The file is TOML. Every key is optional; missing keys keep their defaults
// and a missing file yields [Default]:
//
//	[separate]
//	data = false
//	cryptomatte = true
//	shader_aov = false
//	light_group = false
//
//	[denoise]
//	enabled = true
//
//	[slots]
//	prune = false
//
//	[store]
//	url = ""        # "", a directory, file://dir, redis:// or rediss://
//	scope = ""      # optional key prefix
//	ttl = "0s"
//
//	[server]
//	addr = ":8417"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flashaov/pkg/aov"
	"github.com/matzehuels/flashaov/pkg/compositor"
	"github.com/matzehuels/flashaov/pkg/errors"
)

// FileName is the project file looked up in the working directory.
const FileName = "flashaov.toml"

// EnvPath overrides the project file location.
const EnvPath = "FLASHAOV_CONFIG"

// Config is the decoded project file.
type Config struct {
	Separate aov.Flags `toml:"separate"`
	Denoise  Denoise   `toml:"denoise"`
	Slots    Slots     `toml:"slots"`
	Store    Store     `toml:"store"`
	Server   Server    `toml:"server"`
}

// Denoise configures the denoise pass.
type Denoise struct {
	Enabled bool `toml:"enabled"`
}

// Slots configures output slot maintenance.
type Slots struct {
	Prune bool `toml:"prune"`
}

// Store selects the graph snapshot backend.
type Store struct {
	URL   string   `toml:"url"`
	Scope string   `toml:"scope"`
	TTL   Duration `toml:"ttl"`
}

// Server configures `flashaov serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration struct{ time.Duration }

// UnmarshalText parses a duration such as "24h".
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8417"

// Default returns the configuration used when no file exists.
func Default() Config {
	opts := compositor.DefaultOptions()
	return Config{
		Separate: opts.Flags,
		Denoise:  Denoise{Enabled: opts.Denoise},
		Slots:    Slots{Prune: opts.PruneSlots},
		Server:   Server{Addr: DefaultAddr},
	}
}

// Path resolves the project file location: explicit path, then
// $FLASHAOV_CONFIG, then ./flashaov.toml.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return FileName
}

// Load reads the file at path on top of [Default]. A missing file is not an
// error. Unknown keys are rejected so typos do not silently fall back to
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML bytes on top of [Default] and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the store URL, scope and durations.
func (c Config) Validate() error {
	if err := errors.ValidateStoreURL(c.Store.URL); err != nil {
		return err
	}
	if c.Store.Scope != "" {
		if err := errors.ValidateStoreKey(c.Store.Scope); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.scope")
		}
	}
	if c.Store.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "store.ttl must not be negative")
	}
	return nil
}

// Options converts the file into reconcile options.
func (c Config) Options() compositor.Options {
	return compositor.Options{
		Flags:      c.Separate,
		Denoise:    c.Denoise.Enabled,
		PruneSlots: c.Slots.Prune,
	}
}

// SetOptions copies reconcile options back into the file.
func (c *Config) SetOptions(opts compositor.Options) {
	c.Separate = opts.Flags
	c.Denoise.Enabled = opts.Denoise
	c.Slots.Prune = opts.PruneSlots
}

// Encode returns the TOML form of c.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// Save writes c to path, creating parent directories as needed.
func Save(path string, c Config) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "write %s", path)
	}
	return nil
}
