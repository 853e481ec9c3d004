// Package metrics exports dinecluster activity to Prometheus.
//
// Collector implements dinecluster.MetricsCollector and adds HTTP request
// metrics through Middleware. All series are registered on the Registerer
// passed to New so tests can use a private registry.
package metrics
