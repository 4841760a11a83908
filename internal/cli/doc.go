// Package cli implements the foundation command line: one subcommand per
// request shape, sharing flags for config, headers and output.
package cli
