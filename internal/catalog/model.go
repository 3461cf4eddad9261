package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DaviAndorid/ArchitectureGuide/internal/notify"
	"github.com/shopspring/decimal"
)

const (
	// TableProducts is the table holding product rows.
	TableProducts = "products"
	// TableComments is the table holding comment rows.
	TableComments = "comments"
	// TableProductSearch is the full-text shadow of product names and descriptions.
	TableProductSearch = "products_fts"
)

var (
	// ErrInvalidProductID indicates that a product identifier is not positive.
	ErrInvalidProductID = errors.New("catalog: invalid product id")
	// ErrInvalidPrice indicates that a product price is negative.
	ErrInvalidPrice = errors.New("catalog: invalid price")
	// ErrInvalidComment indicates that a comment is missing its text or identifiers.
	ErrInvalidComment = errors.New("catalog: invalid comment")
)

// ProductID represents a validated product identifier.
type ProductID int64

// NewProductID validates raw input and returns a ProductID.
func NewProductID(value int64) (ProductID, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidProductID, value)
	}
	return ProductID(value), nil
}

// Int64 exposes the raw identifier.
func (id ProductID) Int64() int64 {
	return int64(id)
}

// Product is a catalog entry. Rows are keyed by ID and replaced wholesale on conflict.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:text;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Product) TableName() string {
	return TableProducts
}

// SameContent reports whether two snapshots describe the same product state.
func (p Product) SameContent(other Product) bool {
	return p.ID == other.ID &&
		p.Name == other.Name &&
		p.Description == other.Description &&
		p.Price.Equal(other.Price)
}

func (p Product) validate() error {
	if _, err := NewProductID(p.ID); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: product %d has price %s", ErrInvalidPrice, p.ID, p.Price.String())
	}
	return nil
}

// Comment is a note left on a product.
type Comment struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	ProductID      int64  `gorm:"column:product_id;not null;index:idx_comments_product"`
	Text           string `gorm:"column:text;not null"`
	PostedAtMillis int64  `gorm:"column:posted_at_ms;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Comment) TableName() string {
	return TableComments
}

// PostedAt returns the posting instant in UTC.
func (c Comment) PostedAt() time.Time {
	return time.UnixMilli(c.PostedAtMillis).UTC()
}

// SameContent reports whether two snapshots describe the same comment state.
func (c Comment) SameContent(other Comment) bool {
	return c.ID == other.ID &&
		c.ProductID == other.ProductID &&
		c.Text == other.Text &&
		c.PostedAtMillis == other.PostedAtMillis
}

func (c Comment) validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalidComment, c.ID)
	}
	if _, err := NewProductID(c.ProductID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidComment, err)
	}
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: comment %d has empty text", ErrInvalidComment, c.ID)
	}
	return nil
}

// ProductSearchEntry is the denormalized copy of a product's searchable text.
// Its rowid mirrors the owning product's id.
type ProductSearchEntry struct {
	RowID       int64  `gorm:"column:rowid"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
}

// TableName provides the explicit table binding for GORM.
func (ProductSearchEntry) TableName() string {
	return TableProductSearch
}

// ChangePublisher receives change announcements after a transaction commits.
type ChangePublisher interface {
	Publish(message notify.ChangeMessage)
}
