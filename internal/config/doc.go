// Package config loads client configuration from YAML files.
//
// Files may reference environment variables with ${VAR} syntax; they are
// expanded before parsing. Optional fields fall back to defaults via
// LoadWithDefaults, and LoadAndValidate additionally rejects invalid values.
package config
