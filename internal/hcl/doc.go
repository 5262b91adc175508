// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, decoding into
// the HCL schema and translation into the format-agnostic model, including
// evaluation of call arguments into plain values.
package hcl
