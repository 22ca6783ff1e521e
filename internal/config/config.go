package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration. Empty subdirectories are derived
// from DataDir during normalization.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	InboxDir    string `toml:"inbox_dir"`
	CatalogDir  string `toml:"catalog_dir"`
	ReportsDir  string `toml:"reports_dir"`
	IndexDir    string `toml:"index_dir"`
	RequestsDir string `toml:"requests_dir"`
	LogDir      string `toml:"log_dir"`
	HistoryDB   string `toml:"history_db"`
}

// Catalog contains merge engine settings.
type Catalog struct {
	DefaultSymbol string   `toml:"default_symbol"`
	DefaultVia    string   `toml:"default_via"`
	WrapperKey    string   `toml:"wrapper_key"`
	SlugMaxLength int      `toml:"slug_max_length"`
	DigestPrefix  string   `toml:"digest_prefix"`
	MatchPriority []string `toml:"match_priority"`
}

// Intake contains settings for converting form exports into pending requests.
type Intake struct {
	KnownAppsPath string `toml:"known_apps_path"`
	DefaultRegion string `toml:"default_region"`
}

// Index contains search index generation settings.
type Index struct {
	Version string `toml:"version"`
}

// Audit contains link-authorization audit settings.
type Audit struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxHosts       int    `toml:"max_hosts"`
	Concurrency    int    `toml:"concurrency"`
	UserAgent      string `toml:"user_agent"`
}

// Report contains change report settings.
type Report struct {
	OutputPath string `toml:"output_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for appcatalog.
//
// Configuration sections by subsystem:
//   - Paths: inbox, catalogs, reports, indexes and run history locations
//   - Catalog: merge defaults, id synthesis and identity match priority
//   - Intake: form export conversion
//   - Index: search index metadata
//   - Audit: universal link authorization probing
//   - Report: change report destination for automation
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Catalog Catalog `toml:"catalog"`
	Intake  Intake  `toml:"intake"`
	Index   Index   `toml:"index"`
	Audit   Audit   `toml:"audit"`
	Report  Report  `toml:"report"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/appcatalog/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("appcatalog.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a merge run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InboxDir, c.Paths.CatalogDir, c.Paths.ReportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
		}
	}
	return nil
}

// LockPath returns the advisory lock file guarding exclusive access to the data directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, ".appcatalog.lock")
}

// CatalogPath returns the catalog file for a region code.
func (c *Config) CatalogPath(region string) string {
	return filepath.Join(c.Paths.CatalogDir, "catalog_"+strings.ToLower(region)+".json")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
