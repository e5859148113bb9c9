// Package cmd implements the command-line interface for the konserve-lmdb
// embedded key-value store. It provides a hierarchical command structure for
// inspecting and manipulating a store directory.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, delete, keys,
//     meta, bset) plus a performance testing tool
//   - util: Shared utilities for command-line processing and configuration
//     (internal use)
//
// See konserve --help for a list of all commands.
package cmd
