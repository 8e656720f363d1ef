package config

import (
	"fmt"
	"strings"
	"time"
)

type NATSConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the NATS configuration.
func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	return nil
}

// PublisherConfig describes the stream documents are published to.
type PublisherConfig struct {
	Stream  string        `koanf:"stream"`
	Subject string        `koanf:"subject"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the NATS publisher configuration.
func (c *PublisherConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS Publisher ---\n")
	b.WriteString(fmt.Sprintf("  stream: %s\n", c.Stream))
	b.WriteString(fmt.Sprintf("  subject: %s\n", c.Subject))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *PublisherConfig) Validate() error {
	if c.Stream == "" {
		return fmt.Errorf("PublisherConfig: stream is not configured")
	}
	if c.Subject == "" {
		return fmt.Errorf("PublisherConfig: subject is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("PublisherConfig: timeout must be greater than zero")
	}
	return nil
}
