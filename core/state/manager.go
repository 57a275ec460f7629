package state

import (
	"fmt"

	coreconfig "github.com/terra-agro/terrabot/core/config"
)

// New constructs the session Manager selected by configuration.
func New(cfg coreconfig.StateConfig) (Manager, error) {
	switch cfg.Backend {
	case coreconfig.StateBackendRedis:
		return NewRedisManager(cfg.Redis)
	case coreconfig.StateBackendMemory, "":
		return NewMemoryManager(), nil
	default:
		return nil, fmt.Errorf("state: unknown backend %q", cfg.Backend)
	}
}
