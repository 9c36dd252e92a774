package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/connectsphere/clientkit/pkg/broadcast"
	"github.com/connectsphere/clientkit/pkg/kvstore"
	"github.com/connectsphere/clientkit/pkg/logger"
)

// MaxRetained caps the notification log at the most recent records.
// The oldest record by insertion is evicted first, regardless of read state.
const MaxRetained = 100

// Durable storage keys.
const (
	recordsKey     = "connectsphere_notifications"
	preferencesKey = "connectsphere_notification_preferences"
)

// Store is the in-process, persisted notification log. It owns the records
// exclusively: callers only ever see snapshots. Every mutation persists the
// full state to durable storage and fans the new snapshot out to all
// subscribers synchronously.
//
// Storage failures are logged and swallowed: the in-memory state remains
// authoritative for the session and persistence trouble never reaches the
// UI as an error.
type Store struct {
	mu      sync.Mutex
	records []Notification
	prefs   Preferences

	storage kvstore.Store
	sink    Sink
	pub     *broadcast.Publisher[[]Notification]
	logger  *slog.Logger
	now     func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSink wires a transient display sink (toasts, OS notifications).
func WithSink(s Sink) StoreOption {
	return func(st *Store) {
		if s != nil {
			st.sink = s
		}
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(log *slog.Logger) StoreOption {
	return func(st *Store) {
		if log != nil {
			st.logger = log
		}
	}
}

// WithClock replaces the time source, used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(st *Store) {
		if now != nil {
			st.now = now
		}
	}
}

// New creates a store backed by the given durable storage. Prior records
// and preferences are loaded eagerly; corrupt or missing state falls back
// to an empty log and default preferences without error.
func New(storage kvstore.Store, opts ...StoreOption) *Store {
	st := &Store{
		storage: storage,
		sink:    NoopSink{},
		prefs:   DefaultPreferences(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(st)
	}
	st.pub = broadcast.NewPublisher(broadcast.WithLogger[[]Notification](st.logger))

	st.load()
	return st
}

// load restores prior session state. Never fails: unparseable storage is
// treated as empty.
func (st *Store) load() {
	var records []Notification
	if _, err := kvstore.GetJSON(st.storage, recordsKey, &records); err != nil {
		st.logger.Warn("stored notifications are unreadable, starting empty",
			logger.Component("notifications"),
			logger.StorageKey(recordsKey),
			logger.Error(err),
		)
	} else {
		st.records = records
	}

	// Unmarshalling over the defaults gives field-wise merge: fields the
	// stored JSON omits keep their default values.
	prefs := DefaultPreferences()
	if _, err := kvstore.GetJSON(st.storage, preferencesKey, &prefs); err != nil {
		st.logger.Warn("stored notification preferences are unreadable, using defaults",
			logger.Component("notifications"),
			logger.StorageKey(preferencesKey),
			logger.Error(err),
		)
		prefs = DefaultPreferences()
	}
	st.prefs = prefs
}

// Add prepends a record to the log, evicting the oldest entry beyond the
// retention cap, persists, and fans the snapshot out. A missing ID or
// creation time is filled in.
func (st *Store) Add(n Notification) {
	st.mu.Lock()
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = st.now()
	}

	st.records = append([]Notification{n}, st.records...)
	if len(st.records) > MaxRetained {
		st.records = st.records[:MaxRetained]
	}

	st.persistRecordsLocked()
	snapshot := st.snapshotLocked()
	prefs := st.prefs
	st.mu.Unlock()

	st.pub.Publish(snapshot)
	st.display(n, prefs)
}

// display forwards the record to the transient sink, best effort.
func (st *Store) display(n Notification, prefs Preferences) {
	if !prefs.Browser || !prefs.Allows(n.Category) {
		return
	}
	if err := st.sink.Notify(context.Background(), n); err != nil {
		st.logger.Warn("failed to display notification",
			logger.Component("notifications"),
			logger.NotificationID(n.ID),
			logger.Error(err),
		)
	}
}

// MarkAsRead marks a single record as read. Idempotent: marking an
// already-read or unknown record has no observable effect.
func (st *Store) MarkAsRead(id string) {
	st.mu.Lock()
	changed := false
	for i := range st.records {
		if st.records[i].ID == id && !st.records[i].Read {
			st.records[i].Read = true
			changed = true
			break
		}
	}
	if !changed {
		st.mu.Unlock()
		return
	}
	st.persistRecordsLocked()
	snapshot := st.snapshotLocked()
	st.mu.Unlock()

	st.pub.Publish(snapshot)
}

// MarkAllAsRead marks every record as read. Idempotent.
func (st *Store) MarkAllAsRead() {
	st.mu.Lock()
	changed := false
	for i := range st.records {
		if !st.records[i].Read {
			st.records[i].Read = true
			changed = true
		}
	}
	if !changed {
		st.mu.Unlock()
		return
	}
	st.persistRecordsLocked()
	snapshot := st.snapshotLocked()
	st.mu.Unlock()

	st.pub.Publish(snapshot)
}

// Delete removes a single record by ID.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	idx := -1
	for i := range st.records {
		if st.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		st.mu.Unlock()
		return
	}
	st.records = append(st.records[:idx], st.records[idx+1:]...)
	st.persistRecordsLocked()
	snapshot := st.snapshotLocked()
	st.mu.Unlock()

	st.pub.Publish(snapshot)
}

// ClearAll removes every record.
func (st *Store) ClearAll() {
	st.mu.Lock()
	st.records = nil
	st.persistRecordsLocked()
	st.mu.Unlock()

	st.pub.Publish([]Notification{})
}

// Notifications returns a snapshot of the log, newest first.
func (st *Store) Notifications() []Notification {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshotLocked()
}

// UnreadCount returns the number of unread records.
func (st *Store) UnreadCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	count := 0
	for i := range st.records {
		if !st.records[i].Read {
			count++
		}
	}
	return count
}

// Subscribe registers a callback invoked with the full snapshot on every
// mutation. A panicking subscriber is isolated from the others. The
// returned function removes the subscription.
func (st *Store) Subscribe(fn func([]Notification)) func() {
	return st.pub.Subscribe(fn)
}

// Preferences returns a copy of the current preferences.
func (st *Store) Preferences() Preferences {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.prefs
}

// UpdatePreferences replaces the preferences and persists them.
func (st *Store) UpdatePreferences(p Preferences) {
	st.mu.Lock()
	st.prefs = p
	if err := kvstore.SetJSON(st.storage, preferencesKey, p); err != nil {
		st.logger.Warn("failed to persist notification preferences",
			logger.Component("notifications"),
			logger.StorageKey(preferencesKey),
			logger.Error(err),
		)
	}
	st.mu.Unlock()
}

// Close releases the subscriber set. The store must not be used afterwards.
func (st *Store) Close() {
	st.pub.Close()
}

// persistRecordsLocked writes the full log. Failures are logged, never
// propagated: in-memory state stays authoritative. Callers hold the lock.
func (st *Store) persistRecordsLocked() {
	if err := kvstore.SetJSON(st.storage, recordsKey, st.records); err != nil {
		st.logger.Warn("failed to persist notifications",
			logger.Component("notifications"),
			logger.StorageKey(recordsKey),
			logger.Error(err),
		)
	}
}

// snapshotLocked copies the record list. Callers hold the lock.
func (st *Store) snapshotLocked() []Notification {
	out := make([]Notification, len(st.records))
	copy(out, st.records)
	return out
}
