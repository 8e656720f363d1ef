package config

import (
	"fmt"
	"strings"
	"time"
)

// SubscriberConfig describes the durable consumer of product change events.
type SubscriberConfig struct {
	Stream     string        `koanf:"stream"`
	Subject    string        `koanf:"subject"`
	Consumer   string        `koanf:"consumer"`
	Batch      int           `koanf:"batch"`
	Timeout    time.Duration `koanf:"timeout"`
	Interval   time.Duration `koanf:"interval"`
	Workers    int           `koanf:"workers"`
	MaxDeliver int           `koanf:"maxdeliver"`
}

// String returns a string representation of the NATS Subscriber configuration.
func (c *SubscriberConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS Subscriber ---\n")
	b.WriteString(fmt.Sprintf("  stream: %s\n", c.Stream))
	b.WriteString(fmt.Sprintf("  subject: %s\n", c.Subject))
	b.WriteString(fmt.Sprintf("  consumer: %s\n", c.Consumer))
	b.WriteString(fmt.Sprintf("  batch: %d\n", c.Batch))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  interval: %s\n", c.Interval))
	b.WriteString(fmt.Sprintf("  workers: %d\n", c.Workers))
	b.WriteString(fmt.Sprintf("  maxdeliver: %d\n", c.MaxDeliver))
	return b.String()
}

func (c *SubscriberConfig) Validate() error {
	switch {
	case c.Stream == "":
		return fmt.Errorf("SubscriberConfig: stream is not configured")
	case c.Subject == "":
		return fmt.Errorf("SubscriberConfig: subject is not configured")
	case c.Consumer == "":
		return fmt.Errorf("SubscriberConfig: consumer is not configured")
	case c.Batch <= 0:
		return fmt.Errorf("SubscriberConfig: batch must be greater than zero")
	case c.Timeout <= 0:
		return fmt.Errorf("SubscriberConfig: timeout must be greater than zero")
	case c.Interval <= 0:
		return fmt.Errorf("SubscriberConfig: interval must be greater than zero")
	case c.Workers <= 0:
		return fmt.Errorf("SubscriberConfig: workers must be greater than zero")
	case c.MaxDeliver < 0:
		return fmt.Errorf("SubscriberConfig: maxdeliver must not be negative")
	}
	return nil
}
