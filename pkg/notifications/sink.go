package notifications

import (
	"context"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/connectsphere/clientkit/pkg/kvstore"
	"github.com/connectsphere/clientkit/pkg/logger"
)

// permissionKey caches the user's OS-notification permission decision.
const permissionKey = "connectsphere_notification_permission"

// Sink displays a notification to the user transiently (toast, OS
// notification). Sinks are best effort: a failing sink is logged by the
// store and never affects the persisted log.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// NoopSink discards notifications. The default when no display is wired.
type NoopSink struct{}

func (NoopSink) Notify(ctx context.Context, n Notification) error { return nil }

// LogSink writes notifications to the structured log. Useful for headless
// sessions and tests.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(ctx context.Context, n Notification) error {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, n.Title,
		logger.Component("notifications"),
		slog.String("type", string(n.Type)),
		slog.String("message", n.Message),
	)
	return nil
}

// MultiSink fans a notification out to several sinks, best effort: every
// sink is attempted regardless of earlier failures and the first error is
// returned for logging.
type MultiSink []Sink

func (m MultiSink) Notify(ctx context.Context, n Notification) error {
	var first error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PermissionFunc asks the user to grant OS-level notifications. It is
// invoked at most once; the decision is cached in durable storage.
type PermissionFunc func(ctx context.Context) bool

// DesktopSink shows OS-level notifications. The first delivery requests
// permission through the configured PermissionFunc and caches the grant;
// a cached denial silently suppresses all future deliveries.
type DesktopSink struct {
	storage    kvstore.Store
	askPermit  PermissionFunc
	notifyFunc func(title, message string, icon any) error
}

// DesktopSinkOption configures a DesktopSink.
type DesktopSinkOption func(*DesktopSink)

// WithPermissionFunc sets the permission prompt. The default grants.
func WithPermissionFunc(fn PermissionFunc) DesktopSinkOption {
	return func(s *DesktopSink) {
		if fn != nil {
			s.askPermit = fn
		}
	}
}

// withNotifyFunc replaces the OS notification primitive, used by tests.
func withNotifyFunc(fn func(title, message string, icon any) error) DesktopSinkOption {
	return func(s *DesktopSink) {
		if fn != nil {
			s.notifyFunc = fn
		}
	}
}

// NewDesktopSink creates a sink backed by the operating system's
// notification facility.
func NewDesktopSink(storage kvstore.Store, opts ...DesktopSinkOption) *DesktopSink {
	s := &DesktopSink{
		storage:    storage,
		askPermit:  func(ctx context.Context) bool { return true },
		notifyFunc: beeep.Notify,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DesktopSink) Notify(ctx context.Context, n Notification) error {
	if !s.permitted(ctx) {
		return nil
	}
	return s.notifyFunc(n.Title, n.Message, nil)
}

// permitted resolves the cached permission decision, prompting on first use.
func (s *DesktopSink) permitted(ctx context.Context) bool {
	if v, ok := s.storage.Get(permissionKey); ok {
		return v == "granted"
	}

	granted := s.askPermit(ctx)
	decision := "denied"
	if granted {
		decision = "granted"
	}
	// A failed cache write only means we ask again next session.
	_ = s.storage.Set(permissionKey, decision)
	return granted
}
