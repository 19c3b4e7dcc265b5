// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ParametersLoader: YAML or TOML deployment parameters
package file
