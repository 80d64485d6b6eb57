package model

import (
	"time"
)

// CartItem is one line of a user's cart. Rows are hard-deleted:
// individually, or all at once when an order consumes them.
// The (user, product, variant) triple is unique, so the same selection
// can never occupy two lines no matter how adds interleave.
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_cart_line" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_line" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Variant   Variant   `gorm:"type:text;uniqueIndex:idx_cart_line" json:"variant"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
