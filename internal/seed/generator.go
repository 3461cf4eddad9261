package seed

import (
	"math/rand/v2"
	"time"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
	"github.com/shopspring/decimal"
)

const (
	maxPrice            = 240
	maxCommentsPerItem  = 5
	productStreamSalt   = 0x70726f64
	commentStreamSalt   = 0x636f6d6d
	commentSpacing      = 24 * time.Hour
	commentHourlyOffset = time.Hour
)

var (
	nameQualifiers = []string{"Special edition", "New", "Cheap", "Quality", "Used"}
	nameSubjects   = []string{"Three-headed Monkey", "Rubber Chicken", "Pint of Grog", "Monocle"}
	descriptions   = []string{
		"is finally here",
		"is recommended by Stan S. Stanman",
		"is the best sold product on Mêlée Island",
		"is 💯",
		"is ❤️",
		"is fine",
	}
	commentTexts = []string{"Comment 1", "Comment 2", "Comment 3", "Comment 4", "Comment 5", "Comment 6"}
)

// Generator produces the sample catalog. The same seed and clock always yield the same rows.
type Generator struct {
	seed  uint64
	clock func() time.Time
}

// NewGenerator returns a generator; a nil clock defaults to time.Now.
func NewGenerator(seed uint64, clock func() time.Time) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{seed: seed, clock: clock}
}

// Products returns one product per qualifier and subject pair, with ids starting at 1.
func (g *Generator) Products() []catalog.Product {
	rng := rand.New(rand.NewPCG(g.seed, productStreamSalt))
	products := make([]catalog.Product, 0, len(nameQualifiers)*len(nameSubjects))
	for i, qualifier := range nameQualifiers {
		for j, subject := range nameSubjects {
			name := qualifier + " " + subject
			products = append(products, catalog.Product{
				ID:          int64(i*len(nameSubjects) + j + 1),
				Name:        name,
				Description: name + " " + descriptions[j],
				Price:       decimal.NewFromFloat(rng.Float64() * maxPrice).Truncate(2),
			})
		}
	}
	return products
}

// Comments returns between one and five comments per product, posted on the
// days leading up to the generator's clock instant.
func (g *Generator) Comments(products []catalog.Product) []catalog.Comment {
	rng := rand.New(rand.NewPCG(g.seed, commentStreamSalt))
	now := g.clock()
	comments := make([]catalog.Comment, 0, len(products)*maxCommentsPerItem)
	var nextID int64 = 1
	for _, product := range products {
		count := rng.IntN(maxCommentsPerItem) + 1
		for k := 0; k < count; k++ {
			postedAt := now.Add(-time.Duration(count-k) * commentSpacing).Add(time.Duration(k) * commentHourlyOffset)
			comments = append(comments, catalog.Comment{
				ID:             nextID,
				ProductID:      product.ID,
				Text:           commentTexts[k] + " for " + product.Name,
				PostedAtMillis: postedAt.UnixMilli(),
			})
			nextID++
		}
	}
	return comments
}
