// Package config loads, normalizes, and validates appcatalog configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GITHUB_SHA for the search index version and GITHUB_OUTPUT for the change
// report. Every directory the merge engine touches is derived from a single
// data_dir unless overridden, so a checkout of the data repository is a
// complete working tree.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a validated identity match priority, and clear validation
// errors.
package config
