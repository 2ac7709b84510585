package repo

import (
	"strings"
	"time"

	models "github.com/rogerio-castellano/products-api/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of
// ProductRepository, used by the test suites in place of Postgres.
type InMemoryProductRepository struct {
	products []models.Product
	nextID   int
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: []models.Product{},
		nextID:   1,
	}
}

// GetAll retrieves all products, newest first.
func (r *InMemoryProductRepository) GetAll() ([]models.Product, error) {
	out := make([]models.Product, 0, len(r.products))
	for i := len(r.products) - 1; i >= 0; i-- {
		out = append(out, r.products[i])
	}
	return out, nil
}

// GetByID retrieves a product by its ID.
func (r *InMemoryProductRepository) GetByID(id int) (models.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// Create adds a new product, assigning its id and creation time.
func (r *InMemoryProductRepository) Create(name string, price float64, image string) (models.Product, error) {
	p := models.Product{
		ID:        r.nextID,
		Name:      strings.TrimSpace(name),
		Price:     price,
		Image:     strings.TrimSpace(image),
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.products = append(r.products, p)
	return p, nil
}

// Update replaces the mutable fields of an existing product.
func (r *InMemoryProductRepository) Update(id int, name string, price float64, image string) (models.Product, error) {
	for i, p := range r.products {
		if p.ID == id {
			p.Name = strings.TrimSpace(name)
			p.Price = price
			p.Image = strings.TrimSpace(image)
			r.products[i] = p
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// Delete removes a product by its ID and returns the removed row.
func (r *InMemoryProductRepository) Delete(id int) (models.Product, error) {
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// Clear removes all products.
func (r *InMemoryProductRepository) Clear() {
	r.products = []models.Product{}
	r.nextID = 1
}

// Count reports how many products are stored.
func (r *InMemoryProductRepository) Count() int {
	return len(r.products)
}
