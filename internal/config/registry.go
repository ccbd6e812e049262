package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "bravia"
	configFile = "config.yaml"

	registryVersion = 1
)

// saveMu serializes writers within one process. Two processes saving at
// once still race; the last rename wins.
var saveMu sync.Mutex

const fileHeader = `# bravia registry
# Known displays, CLI preferences and bridge settings.
#
# MQTT passwords and InfluxDB tokens are kept here in plain text, so the
# file is created readable by its owner only.
`

// Dir returns the directory holding the registry:
// $XDG_CONFIG_HOME/bravia or ~/.config/bravia on Linux and macOS, and
// %LOCALAPPDATA%\bravia on Windows.
func Dir() (string, error) {
	if runtime.GOOS == "windows" {
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("neither LOCALAPPDATA nor USERPROFILE is set")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath is Dir joined with config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadRegistry reads the registry at DefaultPath. A missing file is not an
// error; the caller gets NewRegistry and Save creates the file.
func LoadRegistry() (*Registry, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate registry: %w", err)
	}
	return LoadFile(path)
}

// LoadFile reads the registry at path, and Save writes back to it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		r := NewRegistry()
		r.path = path
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	r := &Registry{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if r.Version != registryVersion {
		return nil, fmt.Errorf("%s: registry version %d is not supported (want %d)", path, r.Version, registryVersion)
	}
	r.normalize()
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry %s: %w", path, err)
	}
	r.path = path
	return r, nil
}

// Path returns the file Save writes to.
func (r *Registry) Path() (string, error) {
	if r.path != "" {
		return r.path, nil
	}
	return DefaultPath()
}

// Save writes the registry through a temporary file and a rename, so a
// crash mid-write leaves the previous file intact.
func (r *Registry) Save() error {
	saveMu.Lock()
	defer saveMu.Unlock()

	path, err := r.Path()
	if err != nil {
		return fmt.Errorf("failed to locate registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	data := append([]byte(fileHeader+"\n"), body...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	r.path = path
	return nil
}
