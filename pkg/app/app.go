// Package app boots the infrastructure every catalog command needs: config,
// the database, the response cache and the optional MongoDB log sink.
//
//	a, err := app.Boot()
//	if err != nil { ... }
//	defer a.Close()
//	store := repositories.NewStore(a.DB)
package app

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/catalog/config"
	"github.com/shashiranjanraj/catalog/pkg/cache"
	"github.com/shashiranjanraj/catalog/pkg/database"
	"github.com/shashiranjanraj/catalog/pkg/logger"
)

// Application holds the shared handles. Close releases them in reverse
// order of acquisition.
type Application struct {
	DB    *gorm.DB
	Cache cache.Store

	closers []func() error
}

// Boot loads config, connects the database and the cache and attaches the
// MongoDB log sink when LOG_MONGO_URI is set. A cache or sink that cannot
// be reached is logged and skipped; the database is required.
func Boot() (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &Application{}

	if uri := config.LogMongoURI(); uri != "" {
		sink, err := logger.NewMongoSink(uri, config.LogMongoDB(), config.LogMongoCollection())
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			logger.AttachSink(sink)
			a.onClose(func() error { sink.Close(); return nil })
		}
	}

	db, err := database.Connect()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.DB = db
	a.onClose(func() error { return database.Close(db) })

	c, err := cache.New()
	if err != nil {
		logger.Warn("response cache disabled", "driver", config.CacheDriver(), "error", err)
		c = cache.Nop{}
	}
	a.Cache = c
	a.onClose(c.Close)

	logger.Info("application booted",
		"env", config.AppEnv(),
		"db_driver", config.DatabaseDriver(),
		"cache_driver", config.CacheDriver(),
	)
	return a, nil
}

// Migrate creates the tables of models when DB_AUTO_MIGRATE is on.
func (a *Application) Migrate(models ...any) error {
	if !config.AutoMigrate() {
		return nil
	}
	return database.Migrate(a.DB, models...)
}

func (a *Application) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases every handle and joins their errors.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
