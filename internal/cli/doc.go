// Package cli is responsible for the command line: it defines the cobra
// commands, resolves configuration from flags, SCRIPTGRID_* environment
// variables and an optional scriptgrid.yaml, and maps failures to exit codes.
package cli
