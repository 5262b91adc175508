// Package config defines the format-agnostic model of a bridge file, along
// with the Loader interface concrete formats implement.
//
// The `config.Model` is the single source of truth for the `app` package.
// Concrete implementations, such as for HCL, are provided in separate
// packages.
package config
