// Package storage provides namespaced key-value slots for persisted state.
//
// A KV holds opaque byte values under string keys inside one namespace. Three
// backends are available:
//   - "file": one file per key under <dir>/<namespace>/, replaced atomically
//   - "sqlite": a kv table in <dir>/tasklist.db (pure Go driver, no cgo)
//   - "memory": a process-local map, used by tests and throwaway sessions
//
// Open selects a backend from Options.
package storage
