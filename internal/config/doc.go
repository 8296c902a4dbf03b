// Package config loads, normalizes, and validates the TOML configuration
// that drives the crawler, the caption pipeline, and the external tool
// collaborators.
package config
