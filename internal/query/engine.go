package query

import (
	"context"
	"errors"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
)

var (
	// ErrInvalidKey indicates a key with an unknown kind or a malformed parameter.
	ErrInvalidKey = errors.New("query: invalid key")
	// ErrMissingStore indicates an engine constructed without a record store.
	ErrMissingStore = errors.New("query: record store is required")
)

// RecordStore is the subset of the catalog store the engine reads from.
type RecordStore interface {
	ProductByID(ctx context.Context, id int64) (catalog.Product, bool, error)
	AllProducts(ctx context.Context) ([]catalog.Product, error)
	SearchProducts(ctx context.Context, term string) ([]catalog.Product, error)
	CommentsForProduct(ctx context.Context, productID int64) ([]catalog.Comment, error)
}

// Result is one snapshot of a query. Product queries fill Products (at most one
// element for KindProductByID); comment queries fill Comments.
type Result struct {
	Key      Key
	Products []catalog.Product
	Comments []catalog.Comment
}

// Product returns the single product of a point lookup.
func (r Result) Product() (catalog.Product, bool) {
	if len(r.Products) == 0 {
		return catalog.Product{}, false
	}
	return r.Products[0], true
}

// Equal reports whether two snapshots have the same key and element-wise equal content.
func (r Result) Equal(other Result) bool {
	if r.Key != other.Key {
		return false
	}
	if len(r.Products) != len(other.Products) || len(r.Comments) != len(other.Comments) {
		return false
	}
	for index := range r.Products {
		if !r.Products[index].SameContent(other.Products[index]) {
			return false
		}
	}
	for index := range r.Comments {
		if !r.Comments[index].SameContent(other.Comments[index]) {
			return false
		}
	}
	return true
}

// Engine translates keys into record store calls.
type Engine struct {
	store RecordStore
}

// NewEngine returns an engine reading from store.
func NewEngine(store RecordStore) (*Engine, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	return &Engine{store: store}, nil
}

// Execute runs the single store operation that key maps to. It blocks on I/O
// and is meant to run on a background goroutine.
func (e *Engine) Execute(ctx context.Context, key Key) (Result, error) {
	key = key.Normalize()
	if err := key.Validate(); err != nil {
		return Result{}, err
	}
	result := Result{Key: key}
	switch key.Kind {
	case KindAllProducts:
		products, err := e.store.AllProducts(ctx)
		if err != nil {
			return Result{}, err
		}
		result.Products = products
	case KindProductByID:
		product, found, err := e.store.ProductByID(ctx, key.ID)
		if err != nil {
			return Result{}, err
		}
		result.Products = []catalog.Product{}
		if found {
			result.Products = append(result.Products, product)
		}
	case KindSearchProducts:
		products, err := e.store.SearchProducts(ctx, key.Term)
		if err != nil {
			return Result{}, err
		}
		result.Products = products
	case KindCommentsForProduct:
		comments, err := e.store.CommentsForProduct(ctx, key.ID)
		if err != nil {
			return Result{}, err
		}
		result.Comments = comments
	}
	return result, nil
}
