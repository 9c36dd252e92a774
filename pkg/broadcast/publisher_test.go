package broadcast_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectsphere/clientkit/pkg/broadcast"
)

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	pub := broadcast.NewPublisher[int]()
	defer pub.Close()

	var got []int
	pub.Subscribe(func(v int) { got = append(got, v) })

	pub.Publish(1)
	pub.Publish(2)

	assert.Equal(t, []int{1, 2}, got)
}

func TestPublisher_MultipleSubscribers(t *testing.T) {
	t.Parallel()

	pub := broadcast.NewPublisher[string]()
	defer pub.Close()

	var a, b []string
	pub.Subscribe(func(v string) { a = append(a, v) })
	pub.Subscribe(func(v string) { b = append(b, v) })

	pub.Publish("x")

	assert.Equal(t, []string{"x"}, a)
	assert.Equal(t, []string{"x"}, b)
}

func TestPublisher_Unsubscribe(t *testing.T) {
	t.Parallel()

	pub := broadcast.NewPublisher[int]()
	defer pub.Close()

	var calls int
	unsubscribe := pub.Subscribe(func(int) { calls++ })
	require.Equal(t, 1, pub.Len())

	pub.Publish(1)
	unsubscribe()
	pub.Publish(2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, pub.Len())

	// Idempotent.
	unsubscribe()
	assert.Equal(t, 0, pub.Len())
}

func TestPublisher_PanicIsolation(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil))

	pub := broadcast.NewPublisher(broadcast.WithLogger[int](log))
	defer pub.Close()

	var survived int
	pub.Subscribe(func(int) { panic("subscriber boom") })
	pub.Subscribe(func(int) { survived++ })

	assert.NotPanics(t, func() { pub.Publish(1) })
	assert.Equal(t, 1, survived)
	assert.Contains(t, buf.String(), "broadcast handler panicked")
}

func TestPublisher_NilHandler(t *testing.T) {
	t.Parallel()

	pub := broadcast.NewPublisher[int]()
	defer pub.Close()

	unsubscribe := pub.Subscribe(nil)
	assert.Equal(t, 0, pub.Len())
	assert.NotPanics(t, unsubscribe)
	assert.NotPanics(t, func() { pub.Publish(1) })
}

func TestPublisher_Close(t *testing.T) {
	t.Parallel()

	pub := broadcast.NewPublisher[int]()

	var calls int
	pub.Subscribe(func(int) { calls++ })

	pub.Close()
	pub.Publish(1)
	assert.Equal(t, 0, calls)

	// Subscribe after close is a no-op.
	pub.Subscribe(func(int) { calls++ })
	pub.Publish(2)
	assert.Equal(t, 0, calls)

	assert.NotPanics(t, pub.Close)
}

func TestPublisher_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	pub := broadcast.NewPublisher[int]()
	defer pub.Close()

	var mu sync.Mutex
	total := 0
	pub.Subscribe(func(v int) {
		mu.Lock()
		total += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				pub.Publish(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, total)
}
