// Package logging provides structured logging utilities with context propagation.
//
// The API server and worker log JSON to stdout; the CLI logs text to stderr.
// Request handlers attach the request ID so a report build can be followed
// across strategy, LLM and cache log lines.
package logging
