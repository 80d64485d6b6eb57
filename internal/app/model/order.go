package model

import (
	"time"
)

type OrderStatus string

const (
	// OrderStatusProcessing is the only status set at placement time;
	// later lifecycle states are driven from outside the engine.
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is an append-only ledger row. Monetary fields are computed once
// at placement and never recomputed; only Status changes afterwards.
type Order struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	Subtotal  float64     `gorm:"not null" json:"subtotal"`
	Tax       float64     `gorm:"not null" json:"tax"`
	Shipping  float64     `gorm:"not null" json:"shipping"`
	Discount  float64     `gorm:"not null;default:0" json:"discount"`
	Total     float64     `gorm:"not null" json:"total"`
	Status    OrderStatus `gorm:"type:varchar(20);default:'processing'" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Relationships
	User       User        `gorm:"foreignKey:UserID" json:"-"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem freezes one cart line at purchase time. Variant is a copy
// of the cart item's selector and does not follow later edits to the
// cart or the product.
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Variant   Variant   `gorm:"type:text" json:"variant"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
