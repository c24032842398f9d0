// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags, the config file and the environment into the
// application's configuration and dispatches to the dmngrid commands.
package cli
