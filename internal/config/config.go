// Package config loads cvoice settings.
//
// Settings are layered: built-in defaults, then an optional YAML file,
// then .env files and the process environment (CVOICE_ prefix), then
// command-line flags, which the cli package applies last.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/communityvoice/internal/app"
	"github.com/roach88/communityvoice/internal/router"
	"github.com/roach88/communityvoice/internal/storage"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "CVOICE_"

// Config holds the runtime settings of a session.
type Config struct {
	// DBPath is the SQLite database file. Empty keeps state in memory.
	DBPath string `yaml:"db_path"`

	// StorageKey is the key the state blob is saved under.
	StorageKey string `yaml:"storage_key"`

	// LoadingDelay is the pause between the loading placeholder and the
	// rendered view.
	LoadingDelay time.Duration `yaml:"loading_delay"`

	// SearchDebounce is the quiet period before a search re-renders.
	SearchDebounce time.Duration `yaml:"search_debounce"`

	// DefaultRoute is shown for an empty address fragment.
	DefaultRoute string `yaml:"default_route"`

	// SeedPath replaces the embedded seed document. Empty uses the
	// embedded one.
	SeedPath string `yaml:"seed_path"`

	// AllowAnonymous lets users without an identity submit new items.
	AllowAnonymous bool `yaml:"allow_anonymous"`

	// ShareBase is the app URL used in share links.
	ShareBase string `yaml:"share_base"`

	Verbose bool `yaml:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		StorageKey:     storage.DefaultKey,
		LoadingDelay:   router.DefaultLoadingDelay,
		SearchDebounce: app.DefaultSearchDebounce,
		DefaultRoute:   router.NameIdeas,
		ShareBase:      app.DefaultShareBase,
	}
}

// Options selects the files Load reads.
type Options struct {
	// File is an optional YAML settings file.
	File string

	// EnvFiles are .env files; missing ones are skipped.
	EnvFiles []string
}

// Load builds a Config from defaults, opts.File and the environment.
func Load(opts Options) (Config, error) {
	cfg := Default()
	if opts.File != "" {
		if err := cfg.LoadFile(opts.File); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.LoadEnv(opts.EnvFiles...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile merges the YAML file at path into c. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges CVOICE_* variables into c. Values from envFiles are
// used first; the process environment overrides them.
func (c *Config) LoadEnv(envFiles ...string) error {
	vars := make(map[string]string)
	for _, f := range envFiles {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("env file not found, skipping", "path", f)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read env file %s: %w", f, err)
		}
		for k, v := range m {
			vars[k] = v
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			vars[k] = v
		}
	}
	return c.apply(vars)
}

func (c *Config) apply(vars map[string]string) error {
	for k, v := range vars {
		name, ok := strings.CutPrefix(k, EnvPrefix)
		if !ok {
			continue
		}
		var err error
		switch name {
		case "DB_PATH":
			c.DBPath = v
		case "STORAGE_KEY":
			c.StorageKey = v
		case "LOADING_DELAY":
			c.LoadingDelay, err = time.ParseDuration(v)
		case "SEARCH_DEBOUNCE":
			c.SearchDebounce, err = time.ParseDuration(v)
		case "DEFAULT_ROUTE":
			c.DefaultRoute = v
		case "SEED_PATH":
			c.SeedPath = v
		case "ALLOW_ANONYMOUS":
			c.AllowAnonymous, err = strconv.ParseBool(v)
		case "SHARE_BASE":
			c.ShareBase = v
		case "VERBOSE":
			c.Verbose, err = strconv.ParseBool(v)
		default:
			slog.Warn("unknown environment setting ignored", "name", k)
		}
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", k, v, err)
		}
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.StorageKey == "":
		return errors.New("storage key must not be empty")
	case c.DefaultRoute == "":
		return errors.New("default route must not be empty")
	case c.LoadingDelay < 0:
		return fmt.Errorf("loading delay must not be negative, got %s", c.LoadingDelay)
	case c.SearchDebounce < 0:
		return fmt.Errorf("search debounce must not be negative, got %s", c.SearchDebounce)
	}
	return nil
}
