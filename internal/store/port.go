package store

import (
	"errors"
	"fmt"

	"github.com/nibzard/tasklist/internal/storage"
	"github.com/nibzard/tasklist/internal/todo"
)

// DefaultKey is the slot key holding the snapshot.
const DefaultKey = "tasks"

// ErrMalformedSnapshot marks a stored snapshot that could not be decoded.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Port loads and saves the whole task list.
type Port interface {
	// Load returns the persisted list, todo.ErrNoSnapshot when nothing is
	// stored, or an error wrapping ErrMalformedSnapshot when the stored bytes
	// do not decode.
	Load() (todo.List, error)

	// Save overwrites the persisted list.
	Save(todo.List) error
}

// Slot is a Port backed by one key of a key-value store.
type Slot struct {
	kv  storage.KV
	key string
}

// NewSlot binds key of kv. An empty key means DefaultKey.
func NewSlot(kv storage.KV, key string) *Slot {
	if key == "" {
		key = DefaultKey
	}
	return &Slot{kv: kv, key: key}
}

// Key returns the slot key.
func (s *Slot) Key() string {
	return s.key
}

// Raw returns the stored bytes without decoding them.
func (s *Slot) Raw() ([]byte, bool, error) {
	return s.kv.Get(s.key)
}

// Load implements Port.
func (s *Slot) Load() (todo.List, error) {
	data, ok, err := s.kv.Get(s.key)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if !ok {
		return nil, todo.ErrNoSnapshot
	}
	list, err := todo.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	return list, nil
}

// Save implements Port.
func (s *Slot) Save(list todo.List) error {
	data, err := todo.Encode(list)
	if err != nil {
		return err
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
