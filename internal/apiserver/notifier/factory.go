package notifier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/common/config"
)

// NewNotifier creates a notifier for the configured transport
func NewNotifier(logger *zap.Logger, cfg *config.NotifierConfig) (Notifier, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryNotifier(logger), nil
	case "redis":
		return NewRedisNotifier(logger, &cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported notifier type: %q", cfg.Type)
	}
}
