package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	defaultSpotlightPackage = "One.repo"
	defaultManifestFileName = "addon.xml"
	defaultAggregateName    = "addons.xml"
	defaultDigestName       = "addons.xml.md5"
	defaultListingName      = "index.html"
	defaultReadmeName       = "README.md"
)

type ListingConfig struct {
	FileName       string `yaml:"filename"`
	ReadmeFileName string `yaml:"readme_filename"`
}

type Config struct {
	RepoDir          string        `yaml:"repo_dir"`
	LogLevel         string        `yaml:"log_level"`
	SpotlightPackage string        `yaml:"spotlight_package"`
	ManifestFileName string        `yaml:"manifest_filename"`
	AggregateName    string        `yaml:"aggregate_filename"`
	DigestName       string        `yaml:"digest_filename"`
	ExcludedDirs     []string      `yaml:"excluded_dirs"`
	Listing          ListingConfig `yaml:"listing"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Default returns a config usable without a config file, rooted at repoDir.
func Default(repoDir string) *Config {
	cfg := &Config{RepoDir: repoDir}
	cfg.setDefaults()

	return cfg
}

func (c *Config) setDefaults() {
	if c.RepoDir == "" {
		c.RepoDir = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.SpotlightPackage == "" {
		c.SpotlightPackage = defaultSpotlightPackage
	}
	if c.ManifestFileName == "" {
		c.ManifestFileName = defaultManifestFileName
	}
	if c.AggregateName == "" {
		c.AggregateName = defaultAggregateName
	}
	if c.DigestName == "" {
		c.DigestName = defaultDigestName
	}
	if len(c.ExcludedDirs) == 0 {
		c.ExcludedDirs = []string{".git", ".svn", "__pycache__", ".idea"}
	}
	if c.Listing.FileName == "" {
		c.Listing.FileName = defaultListingName
	}
	if c.Listing.ReadmeFileName == "" {
		c.Listing.ReadmeFileName = defaultReadmeName
	}
}
