package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
	"github.com/DaviAndorid/ArchitectureGuide/internal/config"
	"github.com/DaviAndorid/ArchitectureGuide/internal/database"
	"github.com/DaviAndorid/ArchitectureGuide/internal/livequery"
	"github.com/DaviAndorid/ArchitectureGuide/internal/logging"
	"github.com/DaviAndorid/ArchitectureGuide/internal/notify"
	"github.com/DaviAndorid/ArchitectureGuide/internal/repository"
	"github.com/DaviAndorid/ArchitectureGuide/internal/seed"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errStreamClosed = errors.New("update stream closed")

// app holds the wired catalog for the lifetime of one command.
type app struct {
	cfg          config.AppConfig
	logger       *zap.Logger
	sqlDB        *sql.DB
	store        *catalog.Store
	readiness    *notify.Readiness
	repository   *repository.Repository
	storeExisted bool
}

func openApp() (*app, error) {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return nil, err
	}

	existed, err := database.Exists(appConfig.DatabasePath)
	if err != nil {
		return nil, err
	}
	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	bus := notify.NewBus(appConfig.LiveBufferSize)
	store, err := catalog.NewStore(catalog.StoreConfig{Database: db, Publisher: bus, Logger: logger})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	readiness := notify.NewReadiness(bus)
	repo, err := repository.New(repository.Config{
		Store:      store,
		Bus:        bus,
		Readiness:  readiness,
		Logger:     logger,
		BufferSize: appConfig.LiveBufferSize,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &app{
		cfg:          appConfig,
		logger:       logger,
		sqlDB:        sqlDB,
		store:        store,
		readiness:    readiness,
		repository:   repo,
		storeExisted: existed,
	}, nil
}

func (a *app) Close() {
	a.repository.Close()
	if err := a.sqlDB.Close(); err != nil {
		a.logger.Warn("closing database failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// run initializes the store alongside command. Either failing cancels the other.
func (a *app) run(ctx context.Context, command func(ctx context.Context) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return seed.Initialize(groupCtx, seed.InitConfig{
			Store:        a.store,
			Readiness:    a.readiness,
			Generator:    seed.NewGenerator(uint64(time.Now().UnixNano()), time.Now),
			StoreExisted: a.storeExisted,
			Delay:        a.cfg.SeedDelay,
			Logger:       a.logger,
		})
	})
	group.Go(func() error {
		return command(groupCtx)
	})
	return group.Wait()
}

// firstUpdate waits for the observer's first emission.
func firstUpdate(ctx context.Context, observer *livequery.Observer) (livequery.Update, error) {
	select {
	case <-ctx.Done():
		return livequery.Update{}, ctx.Err()
	case update, ok := <-observer.Updates():
		if !ok {
			return livequery.Update{}, errStreamClosed
		}
		return update, update.Err
	}
}
