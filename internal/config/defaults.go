package config

const (
	defaultDataDir        = "."
	defaultInboxSubdir    = "data/manus"
	defaultCatalogSubdir  = "catalogs"
	defaultReportsSubdir  = "reports"
	defaultIndexSubdir    = "dist/indexes"
	defaultRequestsSubdir = "pending/requests"
	defaultHistorySubdir  = ".appcatalog/history.db"
	defaultSymbol         = "app.fill"
	defaultVia            = "manus"
	defaultWrapperKey     = "apps"
	defaultSlugMaxLength  = 64
	defaultDigestPrefix   = "app-"
	defaultIntakeRegion   = "GLOBAL"
	defaultIndexVersion   = "unknown"
	defaultAuditTimeout   = 8
	defaultAuditMaxHosts  = 4
	defaultAuditWorkers   = 8
	defaultAuditUserAgent = "appcatalog-audit/1.0"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// DefaultMatchPriority is the identity signal order used when none is configured.
var DefaultMatchPriority = []string{"id", "name", "alias", "host"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Catalog: Catalog{
			DefaultSymbol: defaultSymbol,
			DefaultVia:    defaultVia,
			WrapperKey:    defaultWrapperKey,
			SlugMaxLength: defaultSlugMaxLength,
			DigestPrefix:  defaultDigestPrefix,
			MatchPriority: append([]string(nil), DefaultMatchPriority...),
		},
		Intake: Intake{
			DefaultRegion: defaultIntakeRegion,
		},
		Audit: Audit{
			TimeoutSeconds: defaultAuditTimeout,
			MaxHosts:       defaultAuditMaxHosts,
			Concurrency:    defaultAuditWorkers,
			UserAgent:      defaultAuditUserAgent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
