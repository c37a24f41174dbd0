package config

import "github.com/roach88/provq/internal/query"

const (
	defaultDatasetPath   = "mappings.json"
	defaultDatasetFormat = "auto"
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
	defaultExportPath    = "provq.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Dataset: Dataset{
			Path:   defaultDatasetPath,
			Format: defaultDatasetFormat,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Query: Query{
			PerPage: query.DefaultPerPage,
		},
		Export: Export{
			Path: defaultExportPath,
		},
	}
}
