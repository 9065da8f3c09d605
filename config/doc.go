// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including server settings, the telemetry buffer size, logging, and the list
// of circuits registered at startup.
package config
