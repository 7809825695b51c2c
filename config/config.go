// Package config loads the optional insh configuration file and resolves the
// on-disk paths shared by the client and the daemon.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	yaml "gopkg.in/yaml.v2"
)

// configFileName is looked up in the user's home directory.
const configFileName = ".insh-config.yaml"

// Config holds the user configuration.
type Config struct {
	General  GeneralConfig  `yaml:"general"`
	Searcher SearcherConfig `yaml:"searcher"`
}

// GeneralConfig holds configuration that is not specific to one component.
type GeneralConfig struct {
	// TabWidth is the number of columns a tab character is rendered as.
	TabWidth int `yaml:"tab-width"`
	// Bell controls whether the terminal bell is rung.
	Bell bool `yaml:"bell"`
}

// SearcherConfig holds configuration of the searcher.
type SearcherConfig struct {
	History SearcherHistoryConfig `yaml:"history"`
}

// SearcherHistoryConfig holds configuration of the searcher history.
type SearcherHistoryConfig struct {
	// Length is the maximum number of history entries kept.
	Length int `yaml:"length"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		General: GeneralConfig{
			TabWidth: 4,
			Bell:     true,
		},
		Searcher: SearcherConfig{
			History: SearcherHistoryConfig{
				Length: 1000,
			},
		},
	}
}

// Path returns the path of the configuration file.
func Path() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine the home directory: %w", err)
	}
	return filepath.Join(home, configFileName), nil
}

// Load reads the configuration file if it exists. A missing file yields the
// defaults; an unreadable or malformed file is an error.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path, applying defaults for absent
// keys.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read the configuration file %q: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the configuration file %q: %w", path, err)
	}
	if cfg.General.TabWidth <= 0 {
		cfg.General.TabWidth = Default().General.TabWidth
	}
	if cfg.Searcher.History.Length <= 0 {
		cfg.Searcher.History.Length = Default().Searcher.History.Length
	}
	return cfg, nil
}
