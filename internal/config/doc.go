// Package config loads dinecluster configuration.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults
//  2. an optional YAML file (--config flag or DINECLUSTER_CONFIG)
//  3. environment variables with the DINECLUSTER_ prefix, where a double
//     underscore separates sections: DINECLUSTER_SERVER__ADDR=:9090
//
// The merged result is checked with validator struct tags.
package config
