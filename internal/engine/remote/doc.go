// Package remote provides an engine that delegates evaluation to an external
// DMN service over HTTP.
//
// Each Evaluate call exports the model to DMN XML and sends it, together
// with the input values keyed by input name, in one POST to
// <base>/jitdmn/dmnresult. No retries are made. Transport failures and
// non-2xx answers produce a failed result with a single error line and an
// empty decision map.
//
// The request and response types are exported so the evaluation service in
// internal/service can speak the same protocol.
package remote
