// Package conf handles loading and saving of the application settings.
package conf

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// WFOSettings holds configuration for the World Flora Online client.
type WFOSettings struct {
	Enabled     bool          `yaml:"enabled"`
	BaseURL     string        `yaml:"baseurl"`
	GraphQLURL  string        `yaml:"graphqlurl"`
	Timeout     time.Duration `yaml:"timeout"`
	CacheTTL    time.Duration `yaml:"cachettl"`
	RateLimitMS int           `yaml:"ratelimitms"`
}

// INaturalistSettings holds configuration for the iNaturalist client.
type INaturalistSettings struct {
	Enabled             bool          `yaml:"enabled"`
	BaseURL             string        `yaml:"baseurl"`
	Timeout             time.Duration `yaml:"timeout"`
	CacheTTL            time.Duration `yaml:"cachettl"`
	RateLimitMS         int           `yaml:"ratelimitms"`
	TaxonPhotoLimit     int           `yaml:"taxonphotolimit"`
	ObservationPageSize int           `yaml:"observationpagesize"`
}

// PipelineSettings holds configuration for the enrichment pipeline.
type PipelineSettings struct {
	InputDir                  string `yaml:"inputdir"`
	OutputDir                 string `yaml:"outputdir"`
	FilePattern               string `yaml:"filepattern"`
	CallDelayMS               int    `yaml:"calldelayms"`
	PreferAcceptedForSynonyms bool   `yaml:"preferacceptedforsynonyms"`
}

// Settings is the root of the application configuration.
type Settings struct {
	Debug bool `yaml:"debug"`

	WFO         WFOSettings         `yaml:"wfo"`
	INaturalist INaturalistSettings `yaml:"inaturalist"`
	Pipeline    PipelineSettings    `yaml:"pipeline"`
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into a new Settings struct.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// initViper sets up viper's config name, paths and defaults.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if configDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(configDir, "floraquiz"))
	}

	SetDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// No config file found, defaults apply.
	}
	return nil
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write to a temporary file first so the replace is atomic.
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		// Rename can fail across filesystems, fall back to copy & delete.
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}

// moveFile copies src to dst and removes src.
func moveFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}
