// Package upload stages, validates and transfers files to the ConnectSphere
// upload API.
//
// The package splits the concern into three layers:
//
//   - Validator: pure checks on a candidate file (non-empty, size limit,
//     MIME allow-list). No side effects, no network access.
//   - Transport: a single-file multipart POST with byte-level progress
//     reporting. HTTPTransport is the production implementation.
//   - Orchestrator: owns the staged file set, enforces the maximum count,
//     rejects duplicates by (name, size), sequences multi-file batches one
//     transfer at a time, aggregates progress into a monotonically
//     increasing percentage, and converts every terminal outcome into a
//     user-facing notification.
//
// Batches are best effort: a failed transfer is collected and the
// remaining files are still attempted. The operation only fails as a whole
// when every file in the batch fails.
//
// Usage:
//
//	transport := upload.NewHTTPTransport(cfg.BaseURL)
//	orch, err := upload.NewOrchestrator(transport,
//		upload.WithNotifier(store),
//		upload.WithMaxFiles(cfg.MaxFiles),
//	)
//	if err != nil {
//		return err
//	}
//	defer orch.Close()
//
//	orch.AddFiles(upload.NewFile("report.pdf", "application/pdf", data))
//	results, err := orch.Upload(ctx)
//
// In-flight transfers cannot be cancelled individually; cancel the context
// to abort the whole batch. A file removed before Upload is simply
// excluded from the batch.
package upload
