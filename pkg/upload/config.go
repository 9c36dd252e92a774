package upload

import "time"

// Config carries the environment-driven upload settings.
type Config struct {
	BaseURL     string        `env:"UPLOAD_BASE_URL" envDefault:"http://localhost:5000/api"`
	Endpoint    string        `env:"UPLOAD_ENDPOINT" envDefault:"/files/upload"`
	MaxFileSize int64         `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"10485760"`
	MaxFiles    int           `env:"UPLOAD_MAX_FILES" envDefault:"10"`
	Timeout     time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"30s"`
}

// NewHTTPTransportFromConfig creates a transport posting to the configured
// base URL with the configured default timeout.
func NewHTTPTransportFromConfig(cfg Config, opts ...HTTPTransportOption) *HTTPTransport {
	return NewHTTPTransport(cfg.BaseURL, append([]HTTPTransportOption{
		WithTimeout(cfg.Timeout),
	}, opts...)...)
}

// NewOrchestratorFromConfig builds the full upload pipeline from
// environment-derived config: an HTTP transport for the configured base URL
// and an orchestrator enforcing the configured endpoint and limits. Later
// options may override any of them.
func NewOrchestratorFromConfig(cfg Config, opts ...OrchestratorOption) (*Orchestrator, error) {
	transport := NewHTTPTransportFromConfig(cfg)
	return NewOrchestrator(transport, append([]OrchestratorOption{
		WithEndpoint(cfg.Endpoint),
		WithMaxFiles(cfg.MaxFiles),
		WithValidator(NewValidator(WithMaxFileSize(cfg.MaxFileSize))),
	}, opts...)...)
}
