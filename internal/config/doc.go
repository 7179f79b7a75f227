// Package config defines configuration structures and default values for
// docarc, including the optional .docarc YAML file with per-collection
// overrides and the XDG directory layout used for state and payloads.
package config
