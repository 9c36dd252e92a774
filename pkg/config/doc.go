// Package config provides a type-safe, generic and cached way to load client
// configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 to
// deliver a convenient API that:
//
//   - Loads values from the default .env file in the working directory.
//   - Parses the environment into any Go struct using field tags.
//   - Caches each successfully loaded configuration type so it is parsed
//     only once for the lifetime of the process.
//   - Exposes MustLoad for configuration the client cannot start without.
//
// Internally the package keeps a singleton cache storing parsed struct
// copies keyed by their type name. Each key holds a sync.Once guaranteeing
// the parsing work executes at most once per configuration type even under
// concurrent access.
//
// Usage:
//
//	type RealtimeConfig struct {
//		URL            string        `env:"WS_URL" envDefault:"ws://localhost:5000/ws"`
//		ReconnectDelay time.Duration `env:"WS_RECONNECT_DELAY" envDefault:"3s"`
//	}
//
//	var cfg RealtimeConfig
//	config.MustLoad(&cfg)
package config
