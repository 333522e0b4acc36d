package httpprovider

import (
	"fmt"
	"time"

	"github.com/codecontext/codecontext/internal/embedding"
)

func init() {
	embedding.Register("http", factory)
}

func factory(settings map[string]any) (embedding.Provider, error) {
	endpoint, _ := settings["endpoint"].(string)
	if endpoint == "" {
		return nil, fmt.Errorf("httpprovider: %q settings key is required", "endpoint")
	}
	dimension, _ := settings["dimension"].(int)

	cfg := Config{Endpoint: endpoint, Dimension: dimension}
	if timeoutSeconds, ok := settings["health_timeout_seconds"].(int); ok && timeoutSeconds > 0 {
		cfg.HealthTimeout = time.Duration(timeoutSeconds) * time.Second
	}
	return New(cfg), nil
}
