// Package main hosts the podmatch CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls against the
// marketplace REST API. It resolves configuration, opens the local session
// store, and builds the authenticated client once per invocation so
// subcommands only deal with presentation.
//
// Keep this package lean: behaviour belongs in the internal packages, and
// commands here surface it with flags and output formatting.
package main
