package ent

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prices go over the wire as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Customer struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Product struct {
	ID              int64           `json:"id" db:"id"`
	CategoryID      int64           `json:"category_id" db:"category_id"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description" db:"description"`
	Price           decimal.Decimal `json:"price" db:"price"`
	QuantityInStock int32           `json:"quantity_in_stock" db:"quantity_in_stock"`
	Brand           string          `json:"brand" db:"brand"`
	PictureURL      string          `json:"picture_url" db:"picture_url"`

	CategoryName *string `json:"category_name,omitempty" db:"category_name"`
}

type Cart struct {
	ID         int64 `json:"id" db:"id"`
	CustomerID int64 `json:"customer_id" db:"customer_id"`
}

type Order struct {
	ID         int64  `json:"id" db:"id"`
	CustomerID int64  `json:"customer_id" db:"customer_id"`
	CartID     *int64 `json:"cart_id" db:"cart_id"`

	ProductIDs []int64   `json:"product_ids" db:"-"`
	Products   []Product `json:"products,omitempty" db:"-"`
}

type OrderItem struct {
	OrderID     int64 `json:"order_id" db:"order_id"`
	ProductID   int64 `json:"product_id" db:"product_id"`
	DateOfOrder Date  `json:"date_of_order" db:"date_of_order"`
	Quantity    int32 `json:"quantity" db:"quantity"`
}

// OrderItemKey identifies an order item.
type OrderItemKey struct {
	ProductID   int64
	OrderID     int64
	DateOfOrder Date
}

func (i OrderItem) Key() OrderItemKey {
	return OrderItemKey{ProductID: i.ProductID, OrderID: i.OrderID, DateOfOrder: i.DateOfOrder}
}

type User struct {
	ID            int64     `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Roles []string `json:"roles,omitempty" db:"-"`
}

type Role struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type ContactMessage struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CatalogItem is one row of the bootstrap catalog.
type CatalogItem struct {
	Category string
	Product  Product
}
