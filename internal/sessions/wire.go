package sessions

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"doorman/config"
)

func ProvideStore(rdb *redis.Client, cfg *config.Config) *Store {
	return NewStore(rdb, cfg.SessionTTL, cfg.RememberSessionTTL)
}

var Set = wire.NewSet(ProvideStore)
