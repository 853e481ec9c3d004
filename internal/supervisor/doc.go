// Package supervisor runs the long-lived parts of the service under a
// suture v4 supervisor tree.
//
//	root
//	└── api: HTTPServerService
//
// Supervisor events are logged through sutureslog over the zerolog slog
// adapter from internal/logging.
package supervisor
