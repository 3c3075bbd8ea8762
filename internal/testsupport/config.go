package testsupport

import (
	"path/filepath"
	"testing"

	"watchlog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The catalog cache and log file are off unless an option enables them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalog.CachePath = filepath.Join(base, "data", "catalog_cache.db")
	cfgVal.Catalog.CacheEnabled = false
	cfgVal.Logging.FileEnabled = false
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCatalogURL points the config at a fake catalog server.
func WithCatalogURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.BaseURL = url
	}
}

// WithCatalogCache enables the bbolt catalog cache.
func WithCatalogCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.CacheEnabled = true
	}
}

// WithLogFile enables the rotating log file under the temp log dir.
func WithLogFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.FileEnabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
