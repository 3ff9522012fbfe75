package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/eclass/pkg/errors"
)

// configFile is the file name looked up inside the config directory.
const configFile = "config.toml"

// Config holds user defaults read from config.toml. Command-line flags
// override every field.
//
//	extractor = "dijkstra"
//	out = "out.json"
//	cache_dir = "/var/cache/eclass"
//	cache_url = "redis://localhost:6379/0"
//	cache_ttl = "72h"
//	fail_on_unreachable = true
//	metrics_file = "/var/lib/node_exporter/eclass.prom"
type Config struct {
	Extractor         string `toml:"extractor"`
	Out               string `toml:"out"`
	CacheDir          string `toml:"cache_dir"`
	CacheURL          string `toml:"cache_url"`
	CacheTTL          string `toml:"cache_ttl"`
	FailOnUnreachable bool   `toml:"fail_on_unreachable"`
	MetricsFile       string `toml:"metrics_file"`

	// ttl is CacheTTL parsed.
	ttl time.Duration
}

// TTL returns the parsed cache_ttl, or zero for the pipeline default.
func (c Config) TTL() time.Duration { return c.ttl }

// loadConfig reads the config file at path. An empty path selects the
// default location, where a missing file is not an error.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return Config{}, nil
		}
		path = filepath.Join(dir, configFile)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Config{}, nil
	}
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return parseConfig(string(data), path)
}

// parseConfig decodes TOML text. Unknown keys are rejected so typos do not
// pass silently.
func parseConfig(data, path string) (Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if cfg.CacheTTL != "" {
		ttl, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil || ttl <= 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "config %s: invalid cache_ttl %q", path, cfg.CacheTTL)
		}
		cfg.ttl = ttl
	}
	if cfg.Extractor != "" {
		if err := errors.ValidateExtractorName(cfg.Extractor); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
		}
	}
	return cfg, nil
}
