package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Dataset.Path) == "" {
		c.Dataset.Path = defaultDatasetPath
	}
	if c.Dataset.Path, err = expandPath(strings.TrimSpace(c.Dataset.Path)); err != nil {
		return fmt.Errorf("dataset.path: %w", err)
	}
	c.Dataset.Format = lowerOr(c.Dataset.Format, defaultDatasetFormat)

	if strings.TrimSpace(c.Export.Path) == "" {
		c.Export.Path = defaultExportPath
	}
	if c.Export.Path, err = expandPath(strings.TrimSpace(c.Export.Path)); err != nil {
		return fmt.Errorf("export.path: %w", err)
	}

	c.Logging.Level = lowerOr(c.Logging.Level, defaultLogLevel)
	c.Logging.Format = lowerOr(c.Logging.Format, defaultLogFormat)
	return nil
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
