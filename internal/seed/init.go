package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
	"github.com/DaviAndorid/ArchitectureGuide/internal/notify"
	"go.uber.org/zap"
)

var (
	errMissingStore     = errors.New("seed: store is required")
	errMissingReadiness = errors.New("seed: readiness is required")
	errMissingGenerator = errors.New("seed: generator is required")
)

// Store persists the generated catalog in one transaction.
type Store interface {
	InsertSeed(ctx context.Context, products []catalog.Product, comments []catalog.Comment) error
}

// InitConfig describes one startup of the catalog.
type InitConfig struct {
	Store        Store
	Readiness    *notify.Readiness
	Generator    *Generator
	StoreExisted bool
	Delay        time.Duration
	Logger       *zap.Logger
}

// Initialize brings the store to the ready state. A store file that existed
// before startup is ready as is. Otherwise the sample catalog is written after
// Delay; if that fails the readiness stays at seeding and the error is returned.
func Initialize(ctx context.Context, cfg InitConfig) error {
	if cfg.Store == nil {
		return errMissingStore
	}
	if cfg.Readiness == nil {
		return errMissingReadiness
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.StoreExisted {
		logger.Info("store already populated, skipping seed")
		return cfg.Readiness.MarkReady()
	}
	if cfg.Generator == nil {
		return errMissingGenerator
	}
	if err := cfg.Readiness.BeginSeeding(); err != nil {
		return err
	}

	if cfg.Delay > 0 {
		timer := time.NewTimer(cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	products := cfg.Generator.Products()
	comments := cfg.Generator.Comments(products)
	if err := cfg.Store.InsertSeed(ctx, products, comments); err != nil {
		logger.Error("seed failed", zap.Error(err))
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("catalog seeded", zap.Int("products", len(products)), zap.Int("comments", len(comments)))
	return cfg.Readiness.MarkReady()
}
