// Package logger wraps zap with a global sugared logger that writes console
// output to stdout, plus context helpers (ToContext, FromContext, WithName,
// WithKV) so that every step of a run logs with its scope attached.
package logger
