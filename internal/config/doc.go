// Package config handles configuration loading, parsing, and validation
// from an optional YAML file and SCRY_-prefixed environment variables.
package config
