package models

import "time"

// Product represents a product entity as stored in the products table.
// ID and CreatedAt are generated by the database at insertion time.
type Product struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}
