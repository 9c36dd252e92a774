package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/connectsphere/clientkit/pkg/broadcast"
	"github.com/connectsphere/clientkit/pkg/logger"
)

// DefaultMaxFiles caps how many files may be staged at once.
const DefaultMaxFiles = 10

// Notifier receives user-facing messages about upload outcomes. The
// orchestrator converts every validation and transport failure into a
// notification here instead of letting raw errors escape to the UI.
type Notifier interface {
	Success(title, message string)
	Warning(title, message string)
	Error(title, message string)
}

// NoopNotifier discards all messages. Used when no notification store is wired.
type NoopNotifier struct{}

func (NoopNotifier) Success(title, message string) {}
func (NoopNotifier) Warning(title, message string) {}
func (NoopNotifier) Error(title, message string)   {}

// Rejection explains why one candidate from an AddFiles batch was refused.
type Rejection struct {
	File   FileInfo
	Reason error
}

// Orchestrator owns the set of staged files and sequences their transfer.
// Multi-file batches are transferred strictly sequentially to bound server
// load; transfer N+1 never starts before transfer N reaches a terminal
// state. All methods are safe for concurrent use.
type Orchestrator struct {
	mu        sync.Mutex
	staged    []File
	uploading bool
	progress  *Progress
	results   []Result
	errs      []error

	transport Transport
	validator *Validator
	notifier  Notifier
	endpoint  string
	maxFiles  int
	progressP *broadcast.Publisher[Progress]
	logger    *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithValidator replaces the default validator.
func WithValidator(v *Validator) OrchestratorOption {
	return func(o *Orchestrator) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithNotifier wires the user-facing notification collaborator.
func WithNotifier(n Notifier) OrchestratorOption {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithEndpoint sets the upload endpoint for this orchestrator.
func WithEndpoint(endpoint string) OrchestratorOption {
	return func(o *Orchestrator) {
		if endpoint != "" {
			o.endpoint = endpoint
		}
	}
}

// WithMaxFiles overrides the staged-file cap.
func WithMaxFiles(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxFiles = n
		}
	}
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(log *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if log != nil {
			o.logger = log
		}
	}
}

// NewOrchestrator creates an orchestrator sending files through transport.
func NewOrchestrator(transport Transport, opts ...OrchestratorOption) (*Orchestrator, error) {
	if transport == nil {
		return nil, errors.New("upload: transport is required")
	}

	o := &Orchestrator{
		transport: transport,
		validator: NewValidator(),
		notifier:  NoopNotifier{},
		endpoint:  EndpointDocuments,
		maxFiles:  DefaultMaxFiles,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.progressP = broadcast.NewPublisher(broadcast.WithLogger[Progress](o.logger))
	return o, nil
}

// AddFiles validates and stages candidates in input order. Acceptance is
// partial: each rejection is reported independently, both in the returned
// slice and as a user-facing notification, and never prevents later
// candidates in the batch from being accepted.
func (o *Orchestrator) AddFiles(candidates ...File) []Rejection {
	o.mu.Lock()
	defer o.mu.Unlock()

	var rejections []Rejection
	for _, c := range candidates {
		switch {
		case len(o.staged) >= o.maxFiles:
			reason := fmt.Errorf("%w: at most %d files may be staged", ErrTooManyFiles, o.maxFiles)
			rejections = append(rejections, Rejection{File: c.FileInfo, Reason: reason})
			o.notifier.Warning("Too Many Files",
				fmt.Sprintf("You can only upload up to %d files at once", o.maxFiles))

		case o.isDuplicate(c.FileInfo):
			reason := fmt.Errorf("%w: %s", ErrDuplicateFile, c.Name)
			rejections = append(rejections, Rejection{File: c.FileInfo, Reason: reason})
			o.notifier.Warning("Duplicate File", fmt.Sprintf("%s is already selected", c.Name))

		default:
			if err := o.validator.Validate(c.FileInfo); err != nil {
				rejections = append(rejections, Rejection{File: c.FileInfo, Reason: err})
				o.notifyValidationFailure(c.FileInfo, err)
				continue
			}
			o.staged = append(o.staged, c)
		}
	}
	return rejections
}

// isDuplicate checks the staged set for an identical (name, size) pair.
// Callers must hold the lock.
func (o *Orchestrator) isDuplicate(f FileInfo) bool {
	for _, s := range o.staged {
		if s.Name == f.Name && s.Size == f.Size {
			return true
		}
	}
	return false
}

func (o *Orchestrator) notifyValidationFailure(f FileInfo, err error) {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		o.notifier.Error("File Too Large",
			fmt.Sprintf("%s exceeds the maximum file size limit", f.Name))
	case errors.Is(err, ErrEmptyFile):
		o.notifier.Error("Empty File", fmt.Sprintf("%s is empty", f.Name))
	default:
		o.notifier.Error("Invalid File Type",
			fmt.Sprintf("%s is not an accepted file type", f.Name))
	}
}

// RemoveFile removes the staged file at index. It is a no-op while an
// upload is in flight or when index is out of range.
func (o *Orchestrator) RemoveFile(index int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.uploading || index < 0 || index >= len(o.staged) {
		return
	}
	o.staged = append(o.staged[:index], o.staged[index+1:]...)
}

// Upload transfers the staged files. A single file goes direct; multiple
// files are transferred sequentially with the displayed percentage
// aggregated monotonically across the whole batch. Per-file failures are
// collected and do not abort the remaining transfers. When at least one
// file succeeds the successful results are returned even if others failed;
// when every file fails the aggregate error lists all individual failures.
//
// Upload on an empty staged set fails immediately without any network call.
func (o *Orchestrator) Upload(ctx context.Context) ([]Result, error) {
	o.mu.Lock()
	if o.uploading {
		o.mu.Unlock()
		return nil, ErrUploadInProgress
	}
	if len(o.staged) == 0 {
		o.mu.Unlock()
		o.notifier.Warning("No Files", "Please select files to upload")
		return nil, ErrNoFiles
	}

	batch := make([]File, len(o.staged))
	copy(batch, o.staged)
	o.uploading = true
	o.results = nil
	o.errs = nil
	o.progress = &Progress{}
	o.mu.Unlock()

	results, errs := o.run(ctx, batch)

	o.mu.Lock()
	o.uploading = false
	o.progress = nil
	o.results = results
	o.errs = errs
	// Every staged task has reached a terminal state; the batch is done.
	o.staged = nil
	o.mu.Unlock()

	switch {
	case len(errs) == 0:
		o.notifier.Success("Upload Successful", successMessage(len(results)))
		return results, nil
	case len(results) > 0:
		o.logger.Warn("some uploads failed",
			logger.Component("upload"),
			slog.Int("failed", len(errs)),
			slog.Int("succeeded", len(results)),
			logger.Errors(errs...),
		)
		o.notifier.Success("Upload Successful", successMessage(len(results)))
		return results, nil
	default:
		agg := fmt.Errorf("all uploads failed: %w", errors.Join(errs...))
		o.notifier.Error("Upload Failed", agg.Error())
		return nil, agg
	}
}

// run performs the sequential batch transfer outside the lock.
func (o *Orchestrator) run(ctx context.Context, batch []File) ([]Result, []error) {
	var results []Result
	var errs []error

	total := len(batch)
	for i, f := range batch {
		completed := i
		opts := SendOptions{
			Endpoint: o.endpoint,
			OnProgress: func(p Progress) {
				// Fold per-file progress into a batch percentage that only
				// ever moves forward: floor(completed/total*100 + pct/total).
				overall := Progress{
					Loaded:     p.Loaded,
					Total:      p.Total,
					Percentage: (completed*100 + p.Percentage) / total,
				}
				o.setProgress(overall)
			},
		}

		result, err := o.transport.Send(ctx, f, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			o.notifier.Error("Upload Failed",
				fmt.Sprintf("Failed to upload %s: %s", f.Name, userMessage(err)))
			continue
		}
		results = append(results, *result)
	}

	return results, errs
}

func (o *Orchestrator) setProgress(p Progress) {
	o.mu.Lock()
	o.progress = &p
	o.mu.Unlock()
	o.progressP.Publish(p)
}

// userMessage extracts the human-readable reason from a transfer error.
func userMessage(err error) string {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.Message
	}
	return "upload failed"
}

func successMessage(n int) string {
	if n == 1 {
		return "Successfully uploaded 1 file"
	}
	return fmt.Sprintf("Successfully uploaded %d files", n)
}

// SubscribeProgress registers a handler for aggregate progress updates and
// returns its unsubscribe function.
func (o *Orchestrator) SubscribeProgress(fn func(Progress)) func() {
	return o.progressP.Subscribe(fn)
}

// Staged returns a snapshot of the staged file metadata in upload order.
func (o *Orchestrator) Staged() []FileInfo {
	o.mu.Lock()
	defer o.mu.Unlock()

	infos := make([]FileInfo, len(o.staged))
	for i, f := range o.staged {
		infos[i] = f.FileInfo
	}
	return infos
}

// Uploading reports whether a transfer is in flight.
func (o *Orchestrator) Uploading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.uploading
}

// Progress returns a copy of the current aggregate progress, or nil when
// no transfer is in flight.
func (o *Orchestrator) Progress() *Progress {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.progress == nil {
		return nil
	}
	p := *o.progress
	return &p
}

// Results returns the successful results of the most recent batch.
func (o *Orchestrator) Results() []Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Result, len(o.results))
	copy(out, o.results)
	return out
}

// Errors returns the per-file failures of the most recent batch.
func (o *Orchestrator) Errors() []error {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]error, len(o.errs))
	copy(out, o.errs)
	return out
}

// Reset discards all staged files and prior results. No-op while uploading.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.uploading {
		return
	}
	o.staged = nil
	o.progress = nil
	o.results = nil
	o.errs = nil
}

// Close releases the progress publisher.
func (o *Orchestrator) Close() {
	o.progressP.Close()
}
