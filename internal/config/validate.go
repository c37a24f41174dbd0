package config

import (
	"fmt"

	"github.com/roach88/provq/internal/logging"
	"github.com/roach88/provq/internal/query"
	"github.com/roach88/provq/internal/source"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, err := source.ParseFormat(c.Dataset.Format); err != nil {
		return fmt.Errorf("dataset.format: %w", err)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Query.PerPage < 1 || c.Query.PerPage > query.MaxPerPage {
		return fmt.Errorf("query.per_page must be between 1 and %d", query.MaxPerPage)
	}
	return nil
}
