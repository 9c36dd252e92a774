package notifications_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectsphere/clientkit/pkg/kvstore"
	"github.com/connectsphere/clientkit/pkg/notifications"
)

type recordingSink struct {
	mu    sync.Mutex
	seen  []notifications.Notification
	fail  error
}

func (s *recordingSink) Notify(_ context.Context, n notifications.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, n)
	return s.fail
}

func (s *recordingSink) titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.seen))
	for i, n := range s.seen {
		out[i] = n.Title
	}
	return out
}

func TestStore_AddAssignsIDAndTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := notifications.New(kvstore.NewMemoryStore(),
		notifications.WithClock(func() time.Time { return now }),
	)
	defer store.Close()

	store.Add(notifications.Notification{
		Type:    notifications.TypeInfo,
		Title:   "Hello",
		Message: "World",
	})

	all := store.Notifications()
	require.Len(t, all, 1)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, now, all[0].CreatedAt)
	assert.False(t, all[0].Read)
}

func TestStore_NewestFirst(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	store.Add(notifications.Notification{ID: "first", Title: "a"})
	store.Add(notifications.Notification{ID: "second", Title: "b"})
	store.Add(notifications.Notification{ID: "third", Title: "c"})

	all := store.Notifications()
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].ID)
	assert.Equal(t, "second", all[1].ID)
	assert.Equal(t, "first", all[2].ID)
}

func TestStore_CapsAtMaxRetained(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	for i := 0; i < 150; i++ {
		store.Add(notifications.Notification{
			ID:    fmt.Sprintf("n-%03d", i),
			Title: "bulk",
		})
	}

	all := store.Notifications()
	require.Len(t, all, notifications.MaxRetained)

	// The retained records are the 100 most recently added, newest first.
	assert.Equal(t, "n-149", all[0].ID)
	assert.Equal(t, "n-050", all[len(all)-1].ID)
}

func TestStore_EvictionIgnoresReadState(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	store.Add(notifications.Notification{ID: "oldest", Title: "keep me"})
	store.MarkAsRead("oldest")

	for i := 0; i < notifications.MaxRetained; i++ {
		store.Add(notifications.Notification{ID: fmt.Sprintf("n-%03d", i)})
	}

	for _, n := range store.Notifications() {
		assert.NotEqual(t, "oldest", n.ID, "oldest record must be evicted even though it was read")
	}
}

func TestStore_MarkAsRead(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	store.Add(notifications.Notification{ID: "a"})
	store.Add(notifications.Notification{ID: "b"})
	require.Equal(t, 2, store.UnreadCount())

	store.MarkAsRead("a")
	assert.Equal(t, 1, store.UnreadCount())

	// Unknown IDs are ignored.
	store.MarkAsRead("missing")
	assert.Equal(t, 1, store.UnreadCount())
}

func TestStore_MarkAllAsReadIdempotent(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	for i := 0; i < 5; i++ {
		store.Add(notifications.Notification{ID: fmt.Sprintf("n-%d", i)})
	}

	var notified int
	unsubscribe := store.Subscribe(func([]notifications.Notification) {
		notified++
	})
	defer unsubscribe()

	store.MarkAllAsRead()
	first := store.Notifications()
	assert.Equal(t, 0, store.UnreadCount())
	assert.Equal(t, 1, notified)

	// Repeating the operation changes nothing and publishes nothing.
	store.MarkAllAsRead()
	assert.Equal(t, first, store.Notifications())
	assert.Equal(t, 1, notified)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	store.Add(notifications.Notification{ID: "a"})
	store.Add(notifications.Notification{ID: "b"})

	store.Delete("a")
	all := store.Notifications()
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)

	store.Delete("missing")
	assert.Len(t, store.Notifications(), 1)
}

func TestStore_ClearAll(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	store.Add(notifications.Notification{ID: "a"})
	store.Add(notifications.Notification{ID: "b"})

	store.ClearAll()
	assert.Empty(t, store.Notifications())
	assert.Equal(t, 0, store.UnreadCount())
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	t.Parallel()

	storage := kvstore.NewMemoryStore()

	store := notifications.New(storage)
	store.Add(notifications.Notification{ID: "a", Title: "survives"})
	store.MarkAsRead("a")
	prefs := store.Preferences()
	prefs.Browser = false
	store.UpdatePreferences(prefs)
	store.Close()

	reopened := notifications.New(storage)
	defer reopened.Close()

	all := reopened.Notifications()
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID)
	assert.True(t, all[0].Read)
	assert.False(t, reopened.Preferences().Browser)
}

func TestStore_CorruptStorageStartsEmpty(t *testing.T) {
	t.Parallel()

	storage := kvstore.NewMemoryStore()
	require.NoError(t, storage.Set("connectsphere_notifications", "{not json"))
	require.NoError(t, storage.Set("connectsphere_notification_preferences", "also broken"))

	store := notifications.New(storage)
	defer store.Close()

	assert.Empty(t, store.Notifications())
	assert.Equal(t, notifications.DefaultPreferences(), store.Preferences())
}

func TestStore_StorageWriteFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	store := notifications.New(failingStore{})
	defer store.Close()

	store.Add(notifications.Notification{ID: "a", Title: "still here"})

	// In-memory state stays authoritative for the session.
	all := store.Notifications()
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID)
}

func TestStore_SubscriberReceivesSnapshot(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	var got []notifications.Notification
	unsubscribe := store.Subscribe(func(all []notifications.Notification) {
		got = all
	})
	defer unsubscribe()

	store.Add(notifications.Notification{ID: "a"})
	require.Len(t, got, 1)

	store.Add(notifications.Notification{ID: "b"})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
}

func TestStore_PanickingSubscriberIsolated(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	unsubBad := store.Subscribe(func([]notifications.Notification) {
		panic("subscriber bug")
	})
	defer unsubBad()

	var called bool
	unsubGood := store.Subscribe(func([]notifications.Notification) {
		called = true
	})
	defer unsubGood()

	store.Add(notifications.Notification{ID: "a"})
	assert.True(t, called, "healthy subscriber must still run")
}

func TestStore_SinkGatedByPreferences(t *testing.T) {
	t.Parallel()

	t.Run("browser disabled suppresses display", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		store := notifications.New(kvstore.NewMemoryStore(), notifications.WithSink(sink))
		defer store.Close()

		prefs := store.Preferences()
		prefs.Browser = false
		store.UpdatePreferences(prefs)

		store.Add(notifications.Notification{Title: "quiet"})
		assert.Empty(t, sink.titles())
	})

	t.Run("disabled category suppresses display", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		store := notifications.New(kvstore.NewMemoryStore(), notifications.WithSink(sink))
		defer store.Close()

		store.Add(notifications.Notification{
			Category: notifications.CategoryMarketing,
			Title:    "promo",
		})
		store.Add(notifications.Notification{
			Category: notifications.CategoryQuiz,
			Title:    "quiz done",
		})

		assert.Equal(t, []string{"quiz done"}, sink.titles())
	})

	t.Run("records are kept even when display is suppressed", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		store := notifications.New(kvstore.NewMemoryStore(), notifications.WithSink(sink))
		defer store.Close()

		store.Add(notifications.Notification{
			Category: notifications.CategoryMarketing,
			Title:    "promo",
		})

		assert.Empty(t, sink.titles())
		assert.Len(t, store.Notifications(), 1)
	})
}

func TestStore_SinkFailureDoesNotAffectLog(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{fail: errors.New("display broken")}
	store := notifications.New(kvstore.NewMemoryStore(), notifications.WithSink(sink))
	defer store.Close()

	store.Add(notifications.Notification{ID: "a", Title: "kept"})
	assert.Len(t, store.Notifications(), 1)
}

func TestStore_Helpers(t *testing.T) {
	t.Parallel()

	store := notifications.New(kvstore.NewMemoryStore())
	defer store.Close()

	store.UploadComplete("report.pdf")
	store.UploadFailed("huge.bin", "file exceeds the maximum allowed size")
	store.ProofGenerated("proof-42")
	store.QuizCompleted(8, 10, 120)
	store.ConnectionLost()
	store.ConnectionRestored()

	all := store.Notifications()
	require.Len(t, all, 6)

	// Newest first.
	assert.Equal(t, "Connection Restored", all[0].Title)
	assert.Equal(t, notifications.TypeError, all[4].Type)
	assert.Contains(t, all[4].Message, "huge.bin")
	assert.Equal(t, notifications.CategoryQuiz, all[2].Category)
	assert.Contains(t, all[2].Message, "8/10 (80%)")
}

// failingStore rejects every write.
type failingStore struct{}

func (failingStore) Get(string) (string, bool) { return "", false }
func (failingStore) Set(string, string) error  { return errors.New("storage unavailable") }
func (failingStore) Delete(string) error       { return errors.New("storage unavailable") }
