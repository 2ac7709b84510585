package repo

import (
	"errors"

	models "github.com/rogerio-castellano/products-api/internal/models"
)

// ErrProductNotFound is returned when no product matches the given id.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data operations.
// The repository owns id and created_at generation; callers never supply
// them. Name and image are trimmed before storage.
type ProductRepository interface {
	// GetAll returns every product, newest created_at first. An empty store
	// yields an empty slice, not an error.
	GetAll() ([]models.Product, error)
	GetByID(id int) (models.Product, error)
	Create(name string, price float64, image string) (models.Product, error)
	// Update replaces name, price and image; created_at is never touched.
	Update(id int, name string, price float64, image string) (models.Product, error)
	// Delete returns the row as it existed immediately before removal.
	Delete(id int) (models.Product, error)
}
