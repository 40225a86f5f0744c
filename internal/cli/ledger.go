package cli

import (
	"fmt"

	"github.com/cherseta/chersey/internal/config"
	"github.com/cherseta/chersey/internal/crumbs"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/store"
	redisstore "github.com/cherseta/chersey/internal/store/redis"
)

// openLedger returns the crumbs ledger selected by crumbs.backend and a
// function releasing any connection it opened.
func openLedger(cfg config.Config, db *store.DB, log logger.Logger) (crumbs.Ledger, func(), error) {
	switch cfg.Crumbs.Backend {
	case "", "sqlite":
		return db, func() {}, nil
	case "redis":
		opts := redisstore.DefaultConnectOptions(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		client, err := redisstore.Connect(opts, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewLedger(client), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown crumbs backend %q", cfg.Crumbs.Backend)
	}
}
