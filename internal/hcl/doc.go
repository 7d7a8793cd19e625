// Package hcl provides the HCL implementation of the config.Loader
// interface. It parses `graph` blocks, evaluates the `attachment.<name>` and
// `pass.<name>` references and the load(), clear() and bar() functions, and
// translates the result into the format-agnostic config model.
package hcl
