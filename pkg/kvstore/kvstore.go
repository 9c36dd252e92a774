package kvstore

import (
	"encoding/json"
	"fmt"
)

// Store is durable, string-valued key-value storage with synchronous
// semantics. It is the client-side analog of browser local storage: small
// payloads, full-value reads and writes, no transactions.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// GetJSON reads the value under key and unmarshals it into v. It returns
// false when the key is absent. A present but unparseable value returns an
// error so callers can decide to fall back to defaults.
func GetJSON(s Store, key string, v any) (bool, error) {
	raw, ok := s.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("kvstore: unmarshal %q: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore: marshal %q: %w", key, err)
	}
	return s.Set(key, string(raw))
}
