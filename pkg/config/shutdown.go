package config

import (
	"fmt"
	"time"
)

// ShutdownConfig bounds how long in-flight exports may drain after a stop signal.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	if c.Timeout > 5*time.Minute {
		return fmt.Errorf("shutdown timeout %s is too long", c.Timeout)
	}
	return nil
}
