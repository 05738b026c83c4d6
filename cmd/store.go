package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keketsolithane/keketso/internal/auth"
	"github.com/keketsolithane/keketso/internal/config"
	"github.com/keketsolithane/keketso/internal/db"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/keketsolithane/keketso/internal/store/oxidbstore"
	"github.com/keketsolithane/keketso/internal/store/postgrest"
	"github.com/keketsolithane/keketso/internal/store/sqlite"
	"github.com/sirupsen/logrus"
)

// openStore constructs the one store the process uses.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, error) {
	log = log.WithField("driver", cfg.Store.Driver)
	switch cfg.Store.Driver {
	case config.DriverSupabase:
		inspectKey(cfg.Store.Key, log)
		c, err := postgrest.New(cfg.Store.URL, cfg.Store.Key, postgrest.WithTimeout(cfg.Store.Timeout))
		if err != nil {
			return nil, err
		}
		log.WithField("url", cfg.Store.URL).Info("using Supabase store")
		return c, nil

	case config.DriverOxiDB:
		pool, err := db.NewPool(ctx, cfg.OxiDB.Host, cfg.OxiDB.Port, cfg.OxiDB.PoolSize, cfg.OxiDB.Keepalive, log)
		if err != nil {
			return nil, fmt.Errorf("connect to OxiDB: %w", err)
		}
		s := oxidbstore.New(pool, oxidbstore.WithTimeout(cfg.Store.Timeout))
		if err := s.EnsureCollections(ctx); err != nil {
			s.Close()
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"addr":      fmt.Sprintf("%s:%d", cfg.OxiDB.Host, cfg.OxiDB.Port),
			"pool_size": pool.Size(),
		}).Info("connected to OxiDB")
		return s, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.SQLite.Path).Info("using SQLite store")
		return s, nil
	}
	return nil, &config.Error{Key: "store.driver", Err: fmt.Errorf("unknown driver %q", cfg.Store.Driver)}
}

// inspectKey warns about access keys that will not work as expected from a
// public website. Opaque keys are left alone.
func inspectKey(key string, log logrus.FieldLogger) {
	claims, err := auth.InspectKey(key, time.Now())
	switch {
	case errors.Is(err, auth.ErrNotJWT):
		log.Debug("store key is not a JWT; skipping inspection")
	case errors.Is(err, auth.ErrKeyExpired):
		log.WithError(err).Warn("store key has expired; inserts will be rejected")
	case err != nil:
		log.WithError(err).Warn("store key could not be inspected")
	case claims.Privileged():
		log.WithField("role", claims.Role).Warn("store key bypasses row level security; use the anon key")
	default:
		log.WithFields(logrus.Fields{"role": claims.Role, "ref": claims.Ref}).Debug("store key inspected")
	}
}
