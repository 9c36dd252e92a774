// Package notifications provides the client's persisted notification log
// with read/unread state, preference filtering and subscriber fan-out.
//
// The Store owns all records exclusively; callers receive snapshots. The
// log is capped at the 100 most recent records - the oldest record by
// insertion order is evicted first, regardless of its read state. Every
// mutation persists the full state to durable storage and synchronously
// fans the new snapshot out to all subscribers, each isolated from the
// others' failures.
//
// Storage trouble is never fatal: corrupt or missing state loads as an
// empty log with default preferences, and write failures are logged while
// the in-memory state stays authoritative for the session.
//
// Transient display (OS notifications) is delegated to a Sink. DesktopSink
// gates delivery behind a one-time permission prompt whose decision is
// cached in durable storage, mirroring how browsers gate the Notification
// API.
//
// Usage:
//
//	store := notifications.New(storage,
//		notifications.WithSink(notifications.NewDesktopSink(storage)),
//	)
//	defer store.Close()
//
//	unsubscribe := store.Subscribe(func(all []notifications.Notification) {
//		// render the notification center
//	})
//	defer unsubscribe()
//
//	store.UploadComplete("report.pdf")
package notifications
