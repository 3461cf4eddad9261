package repository

import (
	"context"
	"errors"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
	"github.com/DaviAndorid/ArchitectureGuide/internal/livequery"
	"github.com/DaviAndorid/ArchitectureGuide/internal/notify"
	"github.com/DaviAndorid/ArchitectureGuide/internal/query"
	"go.uber.org/zap"
)

var (
	errMissingStore     = errors.New("repository: store is required")
	errMissingBus       = errors.New("repository: change bus is required")
	errMissingReadiness = errors.New("repository: readiness is required")
)

// Config describes the collaborators behind a Repository.
type Config struct {
	Store      *catalog.Store
	Bus        *notify.Bus
	Readiness  *notify.Readiness
	Logger     *zap.Logger
	BufferSize int
}

// Repository is the read surface of the catalog: observable product and
// comment queries plus a synchronous point lookup.
type Repository struct {
	store  *catalog.Store
	cache  *livequery.Cache
	logger *zap.Logger
}

// New wires the query engine and the live cache over cfg.Store.
func New(cfg Config) (*Repository, error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	if cfg.Bus == nil {
		return nil, errMissingBus
	}
	if cfg.Readiness == nil {
		return nil, errMissingReadiness
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, err := query.NewEngine(cfg.Store)
	if err != nil {
		return nil, err
	}
	cache, err := livequery.NewCache(livequery.CacheConfig{
		Executor:   engine,
		Changes:    cfg.Bus,
		Readiness:  cfg.Readiness,
		Logger:     logger,
		BufferSize: cfg.BufferSize,
	})
	if err != nil {
		return nil, err
	}
	return &Repository{store: cfg.Store, cache: cache, logger: logger}, nil
}

// Products observes the product list. A blank term observes every product;
// otherwise only products whose name or description contain the term.
func (r *Repository) Products(term string) (*livequery.Observer, error) {
	return r.cache.Observe(query.SearchProducts(term))
}

// Product observes a single product. Its updates carry zero or one product.
func (r *Repository) Product(id int64) (*livequery.Observer, error) {
	return r.cache.Observe(query.ProductByID(id))
}

// Comments observes the comments of a product, oldest first.
func (r *Repository) Comments(productID int64) (*livequery.Observer, error) {
	return r.cache.Observe(query.CommentsForProduct(productID))
}

// ProductSync reads a product directly from the store, bypassing the live cache.
func (r *Repository) ProductSync(ctx context.Context, id int64) (catalog.Product, bool, error) {
	productID, err := catalog.NewProductID(id)
	if err != nil {
		return catalog.Product{}, false, err
	}
	return r.store.ProductByID(ctx, productID.Int64())
}

// ActiveQueries reports how many live queries are currently shared by observers.
func (r *Repository) ActiveQueries() int {
	return r.cache.ActiveQueries()
}

// Close ends every observer stream.
func (r *Repository) Close() {
	r.cache.Close()
	r.logger.Debug("repository closed")
}
