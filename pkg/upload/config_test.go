package upload_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectsphere/clientkit/pkg/upload"
)

func TestNewOrchestratorFromConfig(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(upload.Result{ID: "f-1", Filename: "notes.txt"})
	}))
	defer server.Close()

	cfg := upload.Config{
		BaseURL:     server.URL,
		Endpoint:    upload.EndpointProofFiles,
		MaxFileSize: 1024,
		MaxFiles:    2,
		Timeout:     5 * time.Second,
	}

	orch, err := upload.NewOrchestratorFromConfig(cfg)
	require.NoError(t, err)
	defer orch.Close()

	// The configured size limit applies.
	rejections := orch.AddFiles(upload.NewFile("big.bin", "application/pdf", make([]byte, 2048)))
	require.Len(t, rejections, 1)
	assert.ErrorIs(t, rejections[0].Reason, upload.ErrFileTooLarge)

	// The configured staging cap applies.
	rejections = orch.AddFiles(
		upload.NewFile("a.txt", "text/plain", []byte("a")),
		upload.NewFile("b.txt", "text/plain", []byte("b")),
		upload.NewFile("c.txt", "text/plain", []byte("c")),
	)
	require.Len(t, rejections, 1)
	assert.ErrorIs(t, rejections[0].Reason, upload.ErrTooManyFiles)

	// The configured endpoint is where transfers land.
	results, err := orch.Upload(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, upload.EndpointProofFiles, gotPath)
}

func TestNewHTTPTransportFromConfig_Timeout(t *testing.T) {
	t.Parallel()

	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	transport := upload.NewHTTPTransportFromConfig(upload.Config{
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})

	_, err := transport.Send(context.Background(),
		upload.NewFile("slow.txt", "text/plain", []byte("x")), upload.SendOptions{})

	var terr *upload.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "upload timed out", terr.Message)
}
