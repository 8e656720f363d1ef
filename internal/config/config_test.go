package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/storefront-indexer/internal/document"
	"github.com/abgdnv/storefront-indexer/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() configloader.Options {
	return configloader.Options{
		ConfigFile: filepath.Join("testdata", "config.yaml"),
		EnvFile:    filepath.Join("testdata", "missing.env"),
	}
}

func TestLoad_FromYaml(t *testing.T) {
	// when
	cfg, err := configloader.LoadWithOptions[*Config]("indexer", testOptions())

	// then
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, 8, cfg.Export.Workers)
	assert.Equal(t, int32(500), cfg.Export.BatchSize)
	assert.Equal(t, "en", cfg.Export.DefaultLanguage)
	assert.Equal(t, 10*time.Second, cfg.Resilience.CircuitBreaker.OpenTimeout)
	assert.Equal(t, "catalog.products.changed", cfg.Subscriber.Subject)
	assert.Equal(t, document.DefaultDefaults(), cfg.Document)
}

func TestLoad_EnvOverridesYaml(t *testing.T) {
	// given
	t.Setenv("INDEXER_EXPORT_WORKERS", "2")
	t.Setenv("INDEXER_LOG_LEVEL", "debug")

	// when
	cfg, err := configloader.LoadWithOptions[*Config]("indexer", testOptions())

	// then
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Export.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidBlockFails(t *testing.T) {
	// given
	t.Setenv("INDEXER_EXPORT_WORKERS", "0")

	// when
	_, err := configloader.LoadWithOptions[*Config]("indexer", testOptions())

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export.workers")
}

func TestValidate_FillsDocumentFallbacks(t *testing.T) {
	// given
	cfg, err := configloader.LoadWithOptions[*Config]("indexer", testOptions())
	require.NoError(t, err)
	cfg.Document = document.Defaults{CategoryName: "Everything"}

	// when
	err = cfg.Validate()

	// then
	require.NoError(t, err)
	assert.Equal(t, "Everything", cfg.Document.CategoryName)
	assert.Equal(t, int64(2), cfg.Document.CategoryID)
	assert.Equal(t, "simple", cfg.Document.TypeID)
}

func TestConfig_StringMasksCredentials(t *testing.T) {
	// given
	cfg, err := configloader.LoadWithOptions[*Config]("indexer", testOptions())
	require.NoError(t, err)

	// when
	out := cfg.String()

	// then
	assert.NotContains(t, out, "indexer:indexer")
	assert.Contains(t, out, "****@localhost:5432/catalog")
	assert.Contains(t, out, "--- Export ---")
}
