// Package kvstore provides durable, string-valued key-value storage for
// client state: the notification log, notification preferences, and search
// history.
//
// The Store interface mirrors the browser local storage contract the client
// was designed around: synchronous get/set/delete of string values. Three
// implementations are provided:
//
//   - MemoryStore: ephemeral, used in tests and throwaway sessions.
//   - FileStore: a single JSON file with atomic rename writes. A missing or
//     corrupt file is treated as an empty store and logged, never surfaced
//     as an error - client storage must not block startup.
//   - RedisStore: shared storage for clients running on multiple devices.
//
// GetJSON and SetJSON round-trip structs through a Store:
//
//	store, _ := kvstore.NewFileStore("~/.connectsphere/state.json")
//	_ = kvstore.SetJSON(store, "preferences", prefs)
//	found, err := kvstore.GetJSON(store, "preferences", &prefs)
package kvstore
