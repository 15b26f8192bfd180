package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultNamespace is used when Options.Namespace is empty.
const DefaultNamespace = "tasklist"

// ErrClosed is returned by operations on a closed KV.
var ErrClosed = errors.New("storage closed")

// KV is a namespaced key-value slot store.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set overwrites the value stored under key.
	Set(key string, value []byte) error

	// Close releases backend resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string
	Namespace string
}

// Open creates the KV described by opts.
func Open(opts Options) (KV, error) {
	namespace := opts.Namespace
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}

	switch NormalizeBackend(opts.Backend) {
	case BackendFile:
		return NewFile(opts.Dir, namespace)
	case BackendSQLite:
		return NewSQLite(opts.Dir, namespace)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected file|sqlite|memory)", opts.Backend)
	}
}

// NormalizeBackend lowercases and trims a backend name. Empty means file.
func NormalizeBackend(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return BackendFile
	}
	return name
}

// ValidBackend reports whether name selects a known backend.
func ValidBackend(name string) bool {
	switch NormalizeBackend(name) {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// sanitizeKey maps a key to a safe file or row name.
func sanitizeKey(input string) string {
	if strings.TrimSpace(input) == "" {
		return "default"
	}

	var b strings.Builder
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			b.WriteByte('_')
			continue
		}
		b.WriteByte(c)
	}

	key := strings.Trim(b.String(), "_.")
	if key == "" {
		return "default"
	}
	return key
}
