// Package config loads, normalizes, and validates watchlog configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the WATCHLOG_CATALOG_URL
// environment fallback. The Config type centralizes the data directory, the
// TVMaze catalog settings and log output so the CLI discovers everything it
// needs in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
