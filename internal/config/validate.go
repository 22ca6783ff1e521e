package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownSignals = map[string]struct{}{
	"id":    {},
	"name":  {},
	"alias": {},
	"host":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.SlugMaxLength < 8 {
		return errors.New("catalog.slug_max_length must be at least 8")
	}
	if strings.ContainsAny(c.Catalog.DigestPrefix, "/\\") {
		return fmt.Errorf("catalog.digest_prefix %q must not contain path separators", c.Catalog.DigestPrefix)
	}
	seen := make(map[string]struct{}, len(c.Catalog.MatchPriority))
	for _, signal := range c.Catalog.MatchPriority {
		if _, ok := knownSignals[signal]; !ok {
			return fmt.Errorf("catalog.match_priority: unknown signal %q (valid: id, name, alias, host)", signal)
		}
		if _, dup := seen[signal]; dup {
			return fmt.Errorf("catalog.match_priority: signal %q listed twice", signal)
		}
		seen[signal] = struct{}{}
	}
	if c.Catalog.MatchPriority[0] != "id" {
		return errors.New("catalog.match_priority must start with \"id\"")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.TimeoutSeconds < 0 {
		return errors.New("audit.timeout_seconds must be positive")
	}
	if c.Audit.MaxHosts < 0 {
		return errors.New("audit.max_hosts must be positive")
	}
	if c.Audit.Concurrency < 0 {
		return errors.New("audit.concurrency must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
