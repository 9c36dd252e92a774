package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectsphere/clientkit/pkg/kvstore"
)

func TestDesktopSink_PermissionPromptedOnce(t *testing.T) {
	t.Parallel()

	storage := kvstore.NewMemoryStore()
	prompts := 0
	delivered := 0

	sink := NewDesktopSink(storage,
		WithPermissionFunc(func(context.Context) bool {
			prompts++
			return true
		}),
		withNotifyFunc(func(title, message string, icon any) error {
			delivered++
			return nil
		}),
	)

	require.NoError(t, sink.Notify(context.Background(), Notification{Title: "a"}))
	require.NoError(t, sink.Notify(context.Background(), Notification{Title: "b"}))

	assert.Equal(t, 1, prompts, "permission is requested at most once")
	assert.Equal(t, 2, delivered)

	v, ok := storage.Get("connectsphere_notification_permission")
	require.True(t, ok)
	assert.Equal(t, "granted", v)
}

func TestDesktopSink_DenialSuppressesDelivery(t *testing.T) {
	t.Parallel()

	storage := kvstore.NewMemoryStore()
	delivered := 0

	sink := NewDesktopSink(storage,
		WithPermissionFunc(func(context.Context) bool { return false }),
		withNotifyFunc(func(title, message string, icon any) error {
			delivered++
			return nil
		}),
	)

	require.NoError(t, sink.Notify(context.Background(), Notification{Title: "a"}))
	assert.Equal(t, 0, delivered)

	v, ok := storage.Get("connectsphere_notification_permission")
	require.True(t, ok)
	assert.Equal(t, "denied", v)
}

func TestDesktopSink_CachedDecisionSkipsPrompt(t *testing.T) {
	t.Parallel()

	storage := kvstore.NewMemoryStore()
	require.NoError(t, storage.Set("connectsphere_notification_permission", "granted"))

	sink := NewDesktopSink(storage,
		WithPermissionFunc(func(context.Context) bool {
			t.Fatal("prompt must not run with a cached decision")
			return false
		}),
		withNotifyFunc(func(title, message string, icon any) error { return nil }),
	)

	require.NoError(t, sink.Notify(context.Background(), Notification{Title: "a"}))
}

func TestMultiSink_BestEffort(t *testing.T) {
	t.Parallel()

	calls := 0
	failing := sinkFunc(func(context.Context, Notification) error {
		calls++
		return errors.New("boom")
	})
	healthy := sinkFunc(func(context.Context, Notification) error {
		calls++
		return nil
	})

	err := MultiSink{failing, healthy, failing}.Notify(context.Background(), Notification{})
	assert.Error(t, err)
	assert.Equal(t, 3, calls, "every sink is attempted despite failures")
}

func TestNoopSink(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NoopSink{}.Notify(context.Background(), Notification{Title: "x"}))
}

type sinkFunc func(context.Context, Notification) error

func (f sinkFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }
