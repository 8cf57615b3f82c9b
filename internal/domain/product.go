// Package domain defines the product model shared by the store, the query
// pipeline, and the HTTP layer. The GORM tags are only consulted by the
// optional SQL-backed store; the in-memory store ignores them.
package domain

// UncategorizedLabel buckets products without a category in statistics.
const UncategorizedLabel = "Uncategorized"

// Product is a sellable item.
//
// Fields:
//   - ID: UUID assigned at creation; never changes afterwards.
//   - Name: non-empty display name.
//   - Description: free text, may be empty.
//   - Price: numeric price; negative values are not rejected.
//   - Category: non-empty grouping label.
//   - InStock: availability flag (false when omitted on input).
type Product struct {
	ID          string  `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string  `json:"name"        gorm:"type:varchar(255);not null"`
	Description string  `json:"description" gorm:"type:text;not null"`
	Price       float64 `json:"price"       gorm:"not null"`
	Category    string  `json:"category"    gorm:"type:varchar(255);not null;index"`
	InStock     bool    `json:"inStock"     gorm:"not null;default:false"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// ProductFields is a validated product payload: every field of Product
// except the identifier.
type ProductFields struct {
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

// NewProduct builds a Product with the given id from validated fields.
func NewProduct(id string, f ProductFields) Product {
	return Product{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Category:    f.Category,
		InStock:     f.InStock,
	}
}
