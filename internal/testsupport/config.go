package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"appcatalog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test. The
// config is written to disk and loaded back so path derivation and validation
// run exactly as they do for the CLI.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = base
	cfgVal.Report.OutputPath = filepath.Join(base, "github_output")
	cfgVal.Index.Version = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	path := filepath.Join(base, "appcatalog.toml")
	WriteTOML(t, path, builder.cfg)
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := loaded.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return loaded
}

// WithMatchPriority overrides the identity signal order.
func WithMatchPriority(signals ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.MatchPriority = signals
	}
}

// WithKnownApps writes body as the known-apps file and points intake at it.
func WithKnownApps(body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "known_apps.json")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			b.t.Fatalf("write known apps: %v", err)
		}
		b.cfg.Intake.KnownAppsPath = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.DataDir
}

// ConfigPath returns the TOML file NewConfig wrote, for passing to --config.
func ConfigPath(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), "appcatalog.toml")
}
