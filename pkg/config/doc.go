// Package config handles configuration management for archstep.
// It layers embedded defaults, system and user TOML files, an explicit
// --config file and ARCHSTEP_ environment variables, then decodes the
// result into a typed Config.
package config
