// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration and runtime metrics for stagebuf consumers.
//
// Provides:
//   - TOML configuration with environment and .env overrides
//   - translation of configuration into buffer options
//   - a concurrent-safe metrics registry
//   - debug probes exposing buffer cursors, pool accounting and platform facts
package control
