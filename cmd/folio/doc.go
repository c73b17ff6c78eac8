// Package main hosts the folio CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, applies flag overrides,
// and hands a validated request to the relocate package. It centralizes
// configuration resolution and structured logging setup so subcommands only
// decide what to run and how to present the result.
//
// Keep this package lean: new behaviour belongs in the internal packages and
// is surfaced here through dedicated commands or flags.
package main
