// Package app wires configuration, logging, engines and the result store
// into one App. It is decoupled from any specific entrypoint like the CLI or
// the evaluation service.
package app
