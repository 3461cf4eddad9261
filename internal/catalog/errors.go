package catalog

import (
	"errors"
	"fmt"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	// ErrSearchFailed indicates that the full-text engine rejected or failed a search,
	// as opposed to a search that simply matched nothing.
	ErrSearchFailed = errors.New("catalog: search failed")
)

// StoreError carries a stable code of the form catalog.<operation>.<reason>.
type StoreError struct {
	code string
	err  error
}

func (e *StoreError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *StoreError) Unwrap() error {
	return e.err
}

func (e *StoreError) Code() string {
	return e.code
}

const (
	opStoreNew          = "catalog.store.new"
	opInsertProducts    = "catalog.insert_products"
	opInsertComments    = "catalog.insert_comments"
	opInsertSeed        = "catalog.insert_seed"
	opProductByID       = "catalog.product_by_id"
	opAllProducts       = "catalog.all_products"
	opSearchProducts    = "catalog.search_products"
	opCommentsByProduct = "catalog.comments_for_product"
	opCounts            = "catalog.counts"

	reasonMissingDatabase   = "missing_database"
	reasonInvalidInput      = "invalid_input"
	reasonProductWrite      = "product_write_failed"
	reasonShadowWrite       = "shadow_write_failed"
	reasonCommentWrite      = "comment_write_failed"
	reasonTransactionFailed = "transaction_failed"
	reasonQueryFailed       = "query_failed"
	reasonSearchFailed      = "search_failed"
)

func newStoreError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &StoreError{code: code, err: cause}
}
