// Package service serves the local engine over the remote evaluation
// protocol, so that a remote engine can be pointed at a dmngrid process. It
// also exposes the health check and Prometheus metrics.
package service
