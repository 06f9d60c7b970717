// Package config loads, normalizes, and validates podmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PODMATCH_API_URL, optionally sourced from a .env file in the working
// directory. The Config type centralizes every knob the CLI needs so the API
// base URL, session storage location, and polling cadence are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
