package realtime

import "time"

// Config holds the realtime channel settings loaded from the environment.
type Config struct {
	URL            string        `env:"WS_URL,required"`
	ReconnectDelay time.Duration `env:"WS_RECONNECT_DELAY" envDefault:"3s"`
}
