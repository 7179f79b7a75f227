// Package log provides the structured logging setup for docarc, built on
// log/slog with a masking handler that keeps collection cookies and auth
// headers out of log output.
package log
