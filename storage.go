package goPortal

import (
	"github.com/MrEthical07/goPortal/storage"
	"github.com/redis/go-redis/v9"
)

// openStorage builds the configured backend. The returned close func
// releases resources the portal created itself; it is nil otherwise.
func openStorage(cfg Config, client redis.UniversalClient) (storage.KeyValueStore, func() error, error) {
	origin := cfg.StorageOrigin()

	switch cfg.Storage.Backend {
	case StorageFile:
		fs, err := storage.NewFileStore(cfg.Storage.Dir, origin)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil

	case StorageRedis:
		var closeFn func() error
		if client == nil {
			c := redis.NewClient(&redis.Options{
				Addr:     cfg.Storage.Redis.Addr,
				Username: cfg.Storage.Redis.Username,
				Password: cfg.Storage.Redis.Password,
				DB:       cfg.Storage.Redis.DB,
			})
			client, closeFn = c, c.Close
		}
		rs := storage.NewRedisStore(client, cfg.Storage.Redis.Prefix, origin, cfg.Storage.Redis.TTL)
		return rs, closeFn, nil

	default:
		return storage.NewMemoryStore(), nil, nil
	}
}
