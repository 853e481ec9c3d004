// Package logging configures the process-wide zerolog logger used by the
// dinecluster binary.
//
// Library code never logs through this package; it receives a
// dinecluster.Logger through options. The binary calls Init once from
// configuration and derives request-scoped loggers with Ctx.
//
// NewSlogHandler adapts the global logger to log/slog for dependencies that
// only speak slog (the suture event hook).
package logging
