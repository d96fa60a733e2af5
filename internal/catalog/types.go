package catalog

import (
	"time"

	"github.com/jpcardenas/tienda-backoffice/internal/colors"
)

// Product availability statuses
const (
	StatusAvailable  = "available"
	StatusOutOfStock = "out-of-stock"
	StatusComingSoon = "coming-soon"
)

// Product is a catalog item. The back office reads it when pricing carts;
// catalog mutations happen through separate admin tooling, so this side
// treats products as read-only.
type Product struct {
	ProductID     string      `dynamodbav:"product_id" json:"id"` // PK
	Name          string      `dynamodbav:"name" json:"name"`
	Description   string      `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Price         int64       `dynamodbav:"price" json:"price"` // COP, integer units
	OriginalPrice *int64      `dynamodbav:"original_price,omitempty" json:"originalPrice,omitempty"`
	Images        []string    `dynamodbav:"images,omitempty" json:"images,omitempty"`
	CategoryID    string      `dynamodbav:"category_id,omitempty" json:"categoryId,omitempty"`
	Status        string      `dynamodbav:"status" json:"status"` // available | out-of-stock | coming-soon
	Colors        colors.List `dynamodbav:"colors,omitempty" json:"colors,omitempty"`
	Featured      bool        `dynamodbav:"featured,omitempty" json:"featured,omitempty"`
	OnSale        bool        `dynamodbav:"on_sale,omitempty" json:"onSale,omitempty"`
	CreatedAt     time.Time   `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `dynamodbav:"updated_at" json:"updatedAt"`
}

// Available reports whether the product can be purchased.
func (p *Product) Available() bool {
	return p.Status == StatusAvailable
}

// Category groups products for the storefront.
type Category struct {
	CategoryID  string `dynamodbav:"category_id" json:"id"` // PK
	Name        string `dynamodbav:"name" json:"name"`
	Description string `dynamodbav:"description,omitempty" json:"description,omitempty"`
	ImageURL    string `dynamodbav:"image_url,omitempty" json:"imageUrl,omitempty"`
}
