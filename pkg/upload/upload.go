package upload

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"
)

// Default endpoints exposed by the upload API.
const (
	EndpointDocuments  = "/files/upload"
	EndpointProofFiles = "/proofs/upload"
	EndpointAvatars    = "/users/avatar"
)

// FileInfo describes a candidate file: the identity used for validation
// and duplicate detection.
type FileInfo struct {
	Name     string
	Size     int64
	MIMEType string
}

// File couples file metadata with its content. Content is consumed once
// during transfer.
type File struct {
	FileInfo
	Content io.Reader
}

// NewFile builds a File from a name, MIME type and raw content.
func NewFile(name, mimeType string, content []byte) File {
	return File{
		FileInfo: FileInfo{
			Name:     name,
			Size:     int64(len(content)),
			MIMEType: mimeType,
		},
		Content: bytes.NewReader(content),
	}
}

// Progress reports transfer progress. Loaded and Total are bytes of the
// transfer in flight; Percentage is the value to display, which for batch
// uploads aggregates across all files.
type Progress struct {
	Loaded     int64
	Total      int64
	Percentage int
}

// percentage computes round(loaded/total*100), clamped to [0,100].
func percentage(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(loaded) / float64(total) * 100))
	return min(max(p, 0), 100)
}

// Result is the server's record of a completed upload. Ownership passes to
// the caller once returned.
type Result struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	MIMEType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FormatFileSize renders a byte count for user-facing messages.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", size, units[i])
}
