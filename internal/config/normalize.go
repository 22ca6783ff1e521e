package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeIntake()
	c.normalizeIndex()
	c.normalizeAudit()
	if err := c.normalizeReport(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	derived := []struct {
		key    string
		target *string
		subdir string
	}{
		{"paths.inbox_dir", &c.Paths.InboxDir, defaultInboxSubdir},
		{"paths.catalog_dir", &c.Paths.CatalogDir, defaultCatalogSubdir},
		{"paths.reports_dir", &c.Paths.ReportsDir, defaultReportsSubdir},
		{"paths.index_dir", &c.Paths.IndexDir, defaultIndexSubdir},
		{"paths.requests_dir", &c.Paths.RequestsDir, defaultRequestsSubdir},
		{"paths.history_db", &c.Paths.HistoryDB, defaultHistorySubdir},
	}
	for _, entry := range derived {
		value := strings.TrimSpace(*entry.target)
		if value == "" {
			value = filepath.Join(c.Paths.DataDir, filepath.FromSlash(entry.subdir))
		} else if !filepath.IsAbs(value) && !strings.HasPrefix(value, "~") {
			value = filepath.Join(c.Paths.DataDir, value)
		}
		if *entry.target, err = expandPath(value); err != nil {
			return fmt.Errorf("%s: %w", entry.key, err)
		}
	}

	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.DefaultSymbol = strings.TrimSpace(c.Catalog.DefaultSymbol)
	if c.Catalog.DefaultSymbol == "" {
		c.Catalog.DefaultSymbol = defaultSymbol
	}
	c.Catalog.DefaultVia = strings.TrimSpace(c.Catalog.DefaultVia)
	if c.Catalog.DefaultVia == "" {
		c.Catalog.DefaultVia = defaultVia
	}
	c.Catalog.WrapperKey = strings.TrimSpace(c.Catalog.WrapperKey)
	if c.Catalog.WrapperKey == "" {
		c.Catalog.WrapperKey = defaultWrapperKey
	}
	if c.Catalog.SlugMaxLength == 0 {
		c.Catalog.SlugMaxLength = defaultSlugMaxLength
	}
	if strings.TrimSpace(c.Catalog.DigestPrefix) == "" {
		c.Catalog.DigestPrefix = defaultDigestPrefix
	}
	if len(c.Catalog.MatchPriority) == 0 {
		c.Catalog.MatchPriority = append([]string(nil), DefaultMatchPriority...)
	}
	for i, signal := range c.Catalog.MatchPriority {
		c.Catalog.MatchPriority[i] = strings.ToLower(strings.TrimSpace(signal))
	}
}

func (c *Config) normalizeIntake() {
	if strings.TrimSpace(c.Intake.KnownAppsPath) != "" {
		if expanded, err := expandPath(c.Intake.KnownAppsPath); err == nil {
			c.Intake.KnownAppsPath = expanded
		}
	}
	c.Intake.DefaultRegion = strings.ToUpper(strings.TrimSpace(c.Intake.DefaultRegion))
	if c.Intake.DefaultRegion == "" {
		c.Intake.DefaultRegion = defaultIntakeRegion
	}
}

func (c *Config) normalizeIndex() {
	c.Index.Version = strings.TrimSpace(c.Index.Version)
	if c.Index.Version == "" {
		if value, ok := os.LookupEnv("GITHUB_SHA"); ok && strings.TrimSpace(value) != "" {
			c.Index.Version = strings.TrimSpace(value)
		}
	}
	if c.Index.Version == "" {
		c.Index.Version = defaultIndexVersion
	}
}

func (c *Config) normalizeAudit() {
	if c.Audit.TimeoutSeconds == 0 {
		c.Audit.TimeoutSeconds = defaultAuditTimeout
	}
	if c.Audit.MaxHosts == 0 {
		c.Audit.MaxHosts = defaultAuditMaxHosts
	}
	if c.Audit.Concurrency == 0 {
		c.Audit.Concurrency = defaultAuditWorkers
	}
	c.Audit.UserAgent = strings.TrimSpace(c.Audit.UserAgent)
	if c.Audit.UserAgent == "" {
		c.Audit.UserAgent = defaultAuditUserAgent
	}
}

func (c *Config) normalizeReport() error {
	if strings.TrimSpace(c.Report.OutputPath) == "" {
		if value, ok := os.LookupEnv("GITHUB_OUTPUT"); ok {
			c.Report.OutputPath = strings.TrimSpace(value)
		}
	}
	if c.Report.OutputPath == "" {
		return nil
	}
	expanded, err := expandPath(c.Report.OutputPath)
	if err != nil {
		return fmt.Errorf("report.output_path: %w", err)
	}
	c.Report.OutputPath = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
