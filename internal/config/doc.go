// Package config loads, normalizes, and validates provq configuration.
//
// Settings come from built-in defaults, then an optional YAML file, then
// PROVQ_* environment variables. Command-line flags are applied by the CLI
// on top of the returned Config. Unknown YAML keys are rejected so typos
// surface as errors instead of silently falling back to defaults.
package config
