package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "git-merge-structure-sql"

// Config holds the settings shared by the merge driver and the installer.
type Config struct {
	// DriverName is the name under merge.<name> in git config and in the
	// merge=<name> attribute.
	DriverName string `yaml:"driver_name"`
	// FilePattern is the gitattributes pattern bound to the driver.
	FilePattern string `yaml:"file_pattern"`
	// Git is the git executable.
	Git     string `yaml:"git"`
	Verbose bool   `yaml:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DriverName:  "merge-structure-sql",
		FilePattern: "structure.sql",
		Git:         "git",
	}
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv), searched from the working directory upwards
// 3. $XDG_CONFIG_HOME/git-merge-structure-sql/config.yaml (YAML)
func Load() (Config, error) {
	cfg := Default()

	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if err := loadYAMLConfig(&cfg); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("MERGE_STRUCTURE_SQL_DRIVER"); v != "" {
		cfg.DriverName = v
	}
	if v := os.Getenv("MERGE_STRUCTURE_SQL_PATTERN"); v != "" {
		cfg.FilePattern = v
	}
	if v := os.Getenv("MERGE_STRUCTURE_SQL_GIT"); v != "" {
		cfg.Git = v
	}
	if v := os.Getenv("MERGE_STRUCTURE_SQL_VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("MERGE_STRUCTURE_SQL_VERBOSE: %w", err)
		}
		cfg.Verbose = verbose
	}

	if cfg.DriverName == "" || cfg.FilePattern == "" || cfg.Git == "" {
		return Config{}, errors.New("config: driver_name, file_pattern and git must not be empty")
	}
	return cfg, nil
}

// Path returns the location of the YAML config file.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.yaml"), nil
}

// loadYAMLConfig overlays the YAML file onto cfg. A missing file is not an
// error; a malformed one is.
func loadYAMLConfig(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories, stopping at the filesystem root.
func findEnvLocal() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".env.local")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
