// Package config holds the configuration of the indexer service.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storefront-indexer/internal/document"
	"github.com/abgdnv/storefront-indexer/pkg/config"
	"github.com/abgdnv/storefront-indexer/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Subscriber config.SubscriberConfig `koanf:"subscriber"`
	Publisher  config.PublisherConfig  `koanf:"publisher"`
	Resilience ResilienceConfig        `koanf:"resilience"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Export     ExportConfig            `koanf:"export"`
	Document   document.Defaults       `koanf:"document"`
}

type ResilienceConfig struct {
	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// ExportConfig tunes bulk exports.
type ExportConfig struct {
	Workers         int    `koanf:"workers"`
	BatchSize       int32  `koanf:"batchsize"`
	FailFast        bool   `koanf:"failfast"`
	DefaultLanguage string `koanf:"defaultlanguage"`
	DefaultStoreID  int64  `koanf:"defaultstoreid"`
	SlugMaxLength   int    `koanf:"slugmaxlength"`
}

func (c *ExportConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Export ---\n")
	b.WriteString(fmt.Sprintf("  workers: %d\n", c.Workers))
	b.WriteString(fmt.Sprintf("  batchsize: %d\n", c.BatchSize))
	b.WriteString(fmt.Sprintf("  failfast: %t\n", c.FailFast))
	b.WriteString(fmt.Sprintf("  defaultlanguage: %s\n", c.DefaultLanguage))
	b.WriteString(fmt.Sprintf("  defaultstoreid: %d\n", c.DefaultStoreID))
	b.WriteString(fmt.Sprintf("  slugmaxlength: %d\n", c.SlugMaxLength))
	return b.String()
}

func (c *ExportConfig) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("export.workers must be greater than zero")
	case c.BatchSize <= 0:
		return fmt.Errorf("export.batchsize must be greater than zero")
	case c.DefaultLanguage == "":
		return fmt.Errorf("export.defaultlanguage is not configured")
	case c.DefaultStoreID < 0:
		return fmt.Errorf("export.defaultstoreid must not be negative")
	case c.SlugMaxLength < 0:
		return fmt.Errorf("export.slugmaxlength must not be negative")
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Subscriber.String())
	b.WriteString(c.Publisher.String())
	b.WriteString(c.Resilience.CircuitBreaker.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Export.String())
	b.WriteString(c.Document.String())
	return b.String()
}

// Validate checks every block; document defaults left unset fall back to the built-in values.
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.Nats,
		&c.Subscriber,
		&c.Publisher,
		&c.Resilience.CircuitBreaker,
		&c.Telemetry,
		&c.Export,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	c.Document = c.Document.WithFallbacks()
	if err := c.Document.Validate(); err != nil {
		return fmt.Errorf("document defaults: %w", err)
	}
	return nil
}
