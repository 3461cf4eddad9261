package query

import (
	"fmt"
	"strconv"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
)

// Kind enumerates the supported parameterized reads.
type Kind int

const (
	// KindAllProducts reads every product.
	KindAllProducts Kind = iota + 1
	// KindProductByID reads one product.
	KindProductByID
	// KindSearchProducts reads products matching a full-text term.
	KindSearchProducts
	// KindCommentsForProduct reads the comments of one product.
	KindCommentsForProduct
)

// String returns the kind's canonical prefix.
func (k Kind) String() string {
	switch k {
	case KindAllProducts:
		return "products"
	case KindProductByID:
		return "product"
	case KindSearchProducts:
		return "search"
	case KindCommentsForProduct:
		return "comments"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Key identifies one live query. Two equal keys always execute the same store call.
// Construct keys with the helpers below so they are normalized.
type Key struct {
	Kind Kind
	ID   int64
	Term string
}

// AllProducts is the key for the full product list.
func AllProducts() Key {
	return Key{Kind: KindAllProducts}
}

// ProductByID is the key for a single product.
func ProductByID(id int64) Key {
	return Key{Kind: KindProductByID, ID: id}
}

// SearchProducts is the key for a product search. A term that is blank after
// stripping wildcard markers yields AllProducts.
func SearchProducts(term string) Key {
	normalized := catalog.NormalizeSearchTerm(term)
	if normalized == "" {
		return AllProducts()
	}
	return Key{Kind: KindSearchProducts, Term: normalized}
}

// CommentsForProduct is the key for a product's comments.
func CommentsForProduct(productID int64) Key {
	return Key{Kind: KindCommentsForProduct, ID: productID}
}

// Normalize returns the canonical form of k.
func (k Key) Normalize() Key {
	switch k.Kind {
	case KindAllProducts:
		return AllProducts()
	case KindProductByID:
		return ProductByID(k.ID)
	case KindSearchProducts:
		return SearchProducts(k.Term)
	case KindCommentsForProduct:
		return CommentsForProduct(k.ID)
	default:
		return k
	}
}

// Validate reports whether k names a supported read.
func (k Key) Validate() error {
	switch k.Kind {
	case KindAllProducts, KindSearchProducts:
		return nil
	case KindProductByID, KindCommentsForProduct:
		if _, err := catalog.NewProductID(k.ID); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidKey, k, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidKey, k)
	}
}

// String renders the canonical key, e.g. "products", "product:3", "search:grog", "comments:3".
func (k Key) String() string {
	switch k.Kind {
	case KindAllProducts:
		return k.Kind.String()
	case KindProductByID, KindCommentsForProduct:
		return k.Kind.String() + ":" + strconv.FormatInt(k.ID, 10)
	case KindSearchProducts:
		return k.Kind.String() + ":" + k.Term
	default:
		return k.Kind.String()
	}
}

// Tables lists the tables whose writes can change the result of k.
func (k Key) Tables() []string {
	switch k.Kind {
	case KindCommentsForProduct:
		return []string{catalog.TableComments}
	case KindAllProducts, KindProductByID, KindSearchProducts:
		return []string{catalog.TableProducts}
	default:
		return nil
	}
}
