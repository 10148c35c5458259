package cache

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Get retrieves a typed value from the manager. It performs a direct type
// assertion first; payloads stored as msgpack []byte are deserialized. A
// payload of the wrong type counts as the hit it was, but found=false is
// returned so the caller refetches.
func Get[T any](m *Manager, key string, category Category) (T, bool) {
	var zero T
	val, found := m.Get(key, category)
	if !found {
		return zero, false
	}
	if typed, ok := val.(T); ok {
		return typed, true
	}
	if data, ok := val.([]byte); ok {
		var result T
		if err := msgpack.Unmarshal(data, &result); err != nil {
			m.log.Warn("cache: failed to unmarshal value for key %s: %v", key, err)
			return zero, false
		}
		return result, true
	}
	m.log.Warn("cache: cannot convert value for key %s of type %T", key, val)
	return zero, false
}

// SetPacked msgpack-encodes data before storing it, for callers that want
// copy semantics instead of sharing the payload. Encode failures drop the
// write; the cache stays consistent either way.
func SetPacked(m *Manager, key string, data any, category Category) {
	buf, err := msgpack.Marshal(data)
	if err != nil {
		m.log.Warn("cache: failed to marshal value for key %s: %v", key, err)
		return
	}
	m.Set(key, buf, category)
}
