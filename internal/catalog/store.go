package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/DaviAndorid/ArchitectureGuide/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	writeBatchSize     = 100
	queryProductByID   = "id = ?"
	queryCommentsByID  = "product_id = ?"
	orderIDAsc         = "id ASC"
	orderPostedAtAsc   = "posted_at_ms ASC, id ASC"
	searchJoin         = "JOIN " + TableProductSearch + " ON " + TableProductSearch + ".rowid = " + TableProducts + ".id"
	searchMatch        = TableProductSearch + " MATCH ?"
	searchSubstring    = "(instr(lower(" + TableProductSearch + ".name), ?) > 0 OR instr(lower(" + TableProductSearch + ".description), ?) > 0)"
	shadowDeleteByRows = "DELETE FROM " + TableProductSearch + " WHERE rowid IN ?"
	shadowInsertRow    = "INSERT INTO " + TableProductSearch + " (rowid, name, description) VALUES (?, ?, ?)"
)

var noOpLogger = zap.NewNop()

// StoreConfig describes the dependencies of a Store.
type StoreConfig struct {
	Database  *gorm.DB
	Publisher ChangePublisher
	Clock     func() time.Time
	Logger    *zap.Logger
}

// Store owns product and comment rows and keeps the full-text shadow in step with products.
// It is safe for concurrent use; writes become visible only when their transaction commits.
type Store struct {
	db        *gorm.DB
	publisher ChangePublisher
	clock     func() time.Time
	logger    *zap.Logger
}

// NewStore validates cfg and returns a Store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Database == nil {
		return nil, newStoreError(opStoreNew, reasonMissingDatabase, errMissingDatabase)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Store{
		db:        cfg.Database,
		publisher: cfg.Publisher,
		clock:     clock,
		logger:    logger,
	}, nil
}

// InsertProducts upserts products in one transaction. The last write for an id wins.
func (s *Store) InsertProducts(ctx context.Context, products []Product) error {
	if err := validateProducts(products); err != nil {
		return newStoreError(opInsertProducts, reasonInvalidInput, err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.writeProducts(tx, opInsertProducts, products)
	})
	if err != nil {
		s.logError(opInsertProducts, reasonTransactionFailed, err, zap.Int("products", len(products)))
		return err
	}
	s.publish(TableProducts, productIDs(products))
	return nil
}

// InsertComments upserts comments in one transaction. Every comment must reference an existing product.
func (s *Store) InsertComments(ctx context.Context, comments []Comment) error {
	if err := validateComments(comments); err != nil {
		return newStoreError(opInsertComments, reasonInvalidInput, err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.writeComments(tx, opInsertComments, comments)
	})
	if err != nil {
		s.logError(opInsertComments, reasonTransactionFailed, err, zap.Int("comments", len(comments)))
		return err
	}
	s.publish(TableComments, commentIDs(comments))
	return nil
}

// InsertSeed writes an initial batch of products and comments atomically.
// On failure nothing from the batch is visible.
func (s *Store) InsertSeed(ctx context.Context, products []Product, comments []Comment) error {
	if err := validateProducts(products); err != nil {
		return newStoreError(opInsertSeed, reasonInvalidInput, err)
	}
	if err := validateComments(comments); err != nil {
		return newStoreError(opInsertSeed, reasonInvalidInput, err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.writeProducts(tx, opInsertSeed, products); err != nil {
			return err
		}
		return s.writeComments(tx, opInsertSeed, comments)
	})
	if err != nil {
		s.logError(opInsertSeed, reasonTransactionFailed, err,
			zap.Int("products", len(products)),
			zap.Int("comments", len(comments)))
		return err
	}
	s.publish(TableProducts, productIDs(products))
	s.publish(TableComments, commentIDs(comments))
	return nil
}

// ProductByID is a synchronous point lookup. A missing row yields found == false and no error.
func (s *Store) ProductByID(ctx context.Context, id int64) (Product, bool, error) {
	var product Product
	err := s.db.WithContext(ctx).Where(queryProductByID, id).Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, false, nil
	}
	if err != nil {
		s.logError(opProductByID, reasonQueryFailed, err, zap.Int64("product_id", id))
		return Product{}, false, newStoreError(opProductByID, reasonQueryFailed, err)
	}
	return product, true, nil
}

// AllProducts returns every product ordered by id.
func (s *Store) AllProducts(ctx context.Context) ([]Product, error) {
	products := make([]Product, 0)
	if err := s.db.WithContext(ctx).Order(orderIDAsc).Find(&products).Error; err != nil {
		s.logError(opAllProducts, reasonQueryFailed, err)
		return nil, newStoreError(opAllProducts, reasonQueryFailed, err)
	}
	return products, nil
}

// SearchProducts returns products whose shadow entry matches every word of term.
// Surrounding wildcard markers are ignored. Input that cannot match anything
// yields an empty slice; a failure inside the full-text engine yields ErrSearchFailed.
func (s *Store) SearchProducts(ctx context.Context, term string) ([]Product, error) {
	products := make([]Product, 0)
	expression := buildSearchExpression(term)
	if expression.empty() {
		return products, nil
	}

	query := s.db.WithContext(ctx).
		Model(&Product{}).
		Select(TableProducts + ".*").
		Joins(searchJoin)
	if expression.match != "" {
		query = query.Where(searchMatch, expression.match)
	}
	for _, substring := range expression.substrings {
		query = query.Where(searchSubstring, substring, substring)
	}
	if err := query.Order(TableProducts + "." + orderIDAsc).Find(&products).Error; err != nil {
		s.logError(opSearchProducts, reasonSearchFailed, err, zap.String("term", term))
		return nil, newStoreError(opSearchProducts, reasonSearchFailed, errors.Join(ErrSearchFailed, err))
	}
	return products, nil
}

// CommentsForProduct returns the comments of one product ordered by posting time.
func (s *Store) CommentsForProduct(ctx context.Context, productID int64) ([]Comment, error) {
	comments := make([]Comment, 0)
	if err := s.db.WithContext(ctx).
		Where(queryCommentsByID, productID).
		Order(orderPostedAtAsc).
		Find(&comments).Error; err != nil {
		s.logError(opCommentsByProduct, reasonQueryFailed, err, zap.Int64("product_id", productID))
		return nil, newStoreError(opCommentsByProduct, reasonQueryFailed, err)
	}
	return comments, nil
}

// Counts reports the number of products, comments and shadow entries.
func (s *Store) Counts(ctx context.Context) (products int64, comments int64, shadow int64, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Model(&Product{}).Count(&products).Error; err != nil {
		return 0, 0, 0, newStoreError(opCounts, reasonQueryFailed, err)
	}
	if err = db.Model(&Comment{}).Count(&comments).Error; err != nil {
		return 0, 0, 0, newStoreError(opCounts, reasonQueryFailed, err)
	}
	if err = db.Table(TableProductSearch).Count(&shadow).Error; err != nil {
		return 0, 0, 0, newStoreError(opCounts, reasonQueryFailed, err)
	}
	return products, comments, shadow, nil
}

func (s *Store) writeProducts(tx *gorm.DB, operation string, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := lastWriteWins(products, func(product Product) int64 { return product.ID })
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).CreateInBatches(&rows, writeBatchSize).Error; err != nil {
		return newStoreError(operation, reasonProductWrite, err)
	}

	ids := productIDs(rows)
	for start := 0; start < len(ids); start += writeBatchSize {
		end := min(start+writeBatchSize, len(ids))
		if err := tx.Exec(shadowDeleteByRows, ids[start:end]).Error; err != nil {
			return newStoreError(operation, reasonShadowWrite, err)
		}
	}
	for _, product := range rows {
		if err := tx.Exec(shadowInsertRow, product.ID, product.Name, product.Description).Error; err != nil {
			return newStoreError(operation, reasonShadowWrite, err)
		}
	}
	return nil
}

func (s *Store) writeComments(tx *gorm.DB, operation string, comments []Comment) error {
	if len(comments) == 0 {
		return nil
	}
	rows := lastWriteWins(comments, func(comment Comment) int64 { return comment.ID })
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).CreateInBatches(&rows, writeBatchSize).Error; err != nil {
		return newStoreError(operation, reasonCommentWrite, err)
	}
	return nil
}

func (s *Store) publish(table string, ids []int64) {
	if s.publisher == nil || len(ids) == 0 {
		return
	}
	s.publisher.Publish(notify.ChangeMessage{
		Topic:     table,
		EventType: notify.EventDataChanged,
		IDs:       ids,
		Timestamp: s.clock().UTC(),
	})
}

func (s *Store) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("catalog store error", attrs...)
}

func validateProducts(products []Product) error {
	for _, product := range products {
		if err := product.validate(); err != nil {
			return err
		}
	}
	return nil
}

// lastWriteWins keeps the final occurrence of every id, preserving first-seen order.
func lastWriteWins[T any](rows []T, id func(T) int64) []T {
	positions := make(map[int64]int, len(rows))
	unique := make([]T, 0, len(rows))
	for _, row := range rows {
		if index, ok := positions[id(row)]; ok {
			unique[index] = row
			continue
		}
		positions[id(row)] = len(unique)
		unique = append(unique, row)
	}
	return unique
}

func validateComments(comments []Comment) error {
	for _, comment := range comments {
		if err := comment.validate(); err != nil {
			return err
		}
	}
	return nil
}

func productIDs(products []Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}
	return ids
}

func commentIDs(comments []Comment) []int64 {
	ids := make([]int64, 0, len(comments))
	for _, comment := range comments {
		ids = append(ids, comment.ID)
	}
	return ids
}
