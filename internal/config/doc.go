// Package config loads, merges, and validates configuration for both
// binaries.
//
// Sources are merged in priority order, a value set by an earlier source is
// never overwritten by a later one:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file (path taken from env or flags)
//
// The entry points are [GetStructuredConfig] for the development server and
// [GetClientConfig] for the sync agent; the latter projects the structured
// config down to the client view and fills sync-tunable defaults.
package config
