// Package config defines the format-agnostic model of render graph
// description files, along with the Loader interface that format-specific
// packages implement.
//
// The `config.Model` is the single source of truth for the `builder`
// package. Concrete loaders for HCL and YAML live in separate packages.
package config
