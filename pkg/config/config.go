// Package config loads prepenv's runtime configuration.
//
// Configuration is layered: embedded defaults, then an optional
// prepenv.toml file, then PREPENV_* environment variables. Later
// layers win.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	preperr "github.com/arthur-debert/prepenv/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "PREPENV_"

// Config is the fully resolved prepenv configuration
type Config struct {
	Pip       PipConfig       `koanf:"pip" toml:"pip"`
	Manifests ManifestsConfig `koanf:"manifests" toml:"manifests"`
	Testing   TestingConfig   `koanf:"testing" toml:"testing"`
	Downgrade DowngradeConfig `koanf:"downgrade" toml:"downgrade"`
	Remove    RemoveConfig    `koanf:"remove" toml:"remove"`
	Developer DeveloperConfig `koanf:"developer" toml:"developer"`
}

// PipConfig names the external executables and the locale forced during
// the editable install.
type PipConfig struct {
	Executable string `koanf:"executable" toml:"executable"`
	Python     string `koanf:"python" toml:"python"`
	Locale     string `koanf:"locale" toml:"locale"`
}

// ManifestsConfig holds the two requirements manifests.
type ManifestsConfig struct {
	Requirements string `koanf:"requirements" toml:"requirements"`
	Testing      string `koanf:"testing" toml:"testing"`
}

// TestingConfig controls test-dependency installation.
type TestingConfig struct {
	// NoBinary is the test-runner package excluded from prebuilt wheels
	NoBinary string `koanf:"no_binary" toml:"no_binary"`
}

// DowngradeConfig pins the package installed for the downgrade test.
type DowngradeConfig struct {
	Package string `koanf:"package" toml:"package"`
	Version string `koanf:"version" toml:"version"`
}

// RemoveConfig names the package removed best-effort at the end of a run.
type RemoveConfig struct {
	Package string `koanf:"package" toml:"package"`
}

// DeveloperConfig controls working-copy installation.
type DeveloperConfig struct {
	Enabled           bool     `koanf:"enabled" toml:"enabled"`
	HostnameSubstring string   `koanf:"hostname_substring" toml:"hostname_substring"`
	ProjectsRoot      string   `koanf:"projects_root" toml:"projects_root"`
	Projects          []string `koanf:"projects" toml:"projects"`
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load resolves the configuration. path, when non-empty, names an
// explicit config file that must exist; otherwise prepenv.toml and
// .prepenv.toml are tried in the current directory.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, preperr.Wrap(err, preperr.ErrConfigParse, "failed to load default config")
	}

	// 2. Config file
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, preperr.Wrapf(err, preperr.ErrConfigLoad, "failed to load config from %s", path)
		}
	} else {
		for _, filename := range []string{".prepenv.toml", "prepenv.toml"} {
			if _, err := os.Stat(filename); err == nil {
				if err := k.Load(file.Provider(filename), toml.Parser()); err != nil {
					return nil, preperr.Wrapf(err, preperr.ErrConfigLoad, "failed to load config from %s", filename)
				}
				break
			}
		}
	}

	// 3. Environment overrides: PREPENV_PIP_EXECUTABLE -> pip.executable.
	// Key names themselves contain underscores (testing.no_binary,
	// developer.hostname_substring), so names are translated against
	// the known key set instead of rewriting every underscore to a dot.
	envKeys := make(map[string]string, len(k.Keys()))
	for _, key := range k.Keys() {
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		envKeys[name] = key
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		if key, ok := envKeys[s]; ok {
			return key
		}
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, preperr.Wrap(err, preperr.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, preperr.Wrap(err, preperr.ErrConfigParse, "failed to unmarshal config")
	}

	return &cfg, nil
}

// DefaultTOML returns the embedded default configuration verbatim.
func DefaultTOML() string {
	return string(defaultConfig)
}

// DeveloperMode resolves whether working copies should be installed,
// from the explicit flag first and the hostname substring second.
func (c *Config) DeveloperMode(hostname string) bool {
	if c.Developer.Enabled {
		return true
	}
	sub := c.Developer.HostnameSubstring
	return sub != "" && hostname != "" && strings.Contains(hostname, sub)
}

// ExpandedProjectsRoot returns the working-copy root with a leading ~
// expanded to the current user's home directory.
func (c *Config) ExpandedProjectsRoot() (string, error) {
	root := c.Developer.ProjectsRoot
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", preperr.Wrap(err, preperr.ErrFileAccess, "cannot resolve home directory")
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	return root, nil
}
