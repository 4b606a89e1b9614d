package storage

import (
	"fmt"

	"github.com/mmuslimabdulj/calcvault/internal/config"
)

// Open returns the adapter selected by cfg.StoreBackend
func Open(cfg *config.Config) (Adapter, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory, "":
		return NewMemory(), nil
	case config.BackendSQLite:
		return NewSQLite(cfg.SQLitePath)
	case config.BackendPostgres:
		return NewPostgres(cfg.PostgresDSN)
	case config.BackendRedis:
		return NewRedis(cfg.RedisAddr)
	case config.BackendPebble:
		return NewPebble(cfg.PebblePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
