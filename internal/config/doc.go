// Package config loads, normalizes, and validates folio configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the FOLIO_BASE_DIR and
// FOLIO_DESTINATION environment overrides. Folder names are normalized to
// Unicode NFC so names typed on one platform match directories created on
// another.
//
// Always obtain settings through this package so the relocator receives an
// absolute base directory and validated folder names.
package config
