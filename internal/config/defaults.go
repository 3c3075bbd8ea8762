package config

const (
	defaultDataDir            = "~/.local/share/watchlog"
	defaultCatalogBaseURL     = "https://api.tvmaze.com"
	defaultCatalogTimeout     = 10
	defaultCatalogRedirects   = 3
	defaultCatalogCacheTTL    = 24
	defaultLogFormat          = "console"
	defaultLogLevel           = "warn"
	defaultLogMaxSizeMB       = 10
	defaultLogMaxBackups      = 3
	defaultLogMaxAgeDays      = 30
	databaseFileName          = "watchlog.db"
	catalogCacheFileName      = "catalog_cache.db"
	maxCatalogRedirectsLimit  = 10
	catalogBaseURLEnvironment = "WATCHLOG_CATALOG_URL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			TimeoutSeconds: defaultCatalogTimeout,
			MaxRedirects:   defaultCatalogRedirects,
			CacheEnabled:   true,
			CacheTTLHours:  defaultCatalogCacheTTL,
		},
		Logging: Logging{
			Format:      defaultLogFormat,
			Level:       defaultLogLevel,
			FileEnabled: true,
			MaxSizeMB:   defaultLogMaxSizeMB,
			MaxBackups:  defaultLogMaxBackups,
			MaxAgeDays:  defaultLogMaxAgeDays,
		},
	}
}
