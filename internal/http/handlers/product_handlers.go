package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	models "github.com/rogerio-castellano/products-api/internal/models"
	repo "github.com/rogerio-castellano/products-api/internal/repo"
	"go.uber.org/zap"
)

// ProductHandler serves the product CRUD endpoints. Storage faults are logged
// with their cause and surfaced to the caller as a generic 500; driver error
// text never reaches a response body.
type ProductHandler struct {
	repo repo.ProductRepository
	log  *zap.SugaredLogger
}

func NewProductHandler(r repo.ProductRepository, log *zap.SugaredLogger) *ProductHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ProductHandler{repo: r, log: log}
}

// List godoc
// @Summary List all products, newest first
// @Tags products
// @Produce json
// @Success 200 {object} Envelope
// @Failure 500 {object} Envelope
// @Router /api/products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetAll()
	if err != nil {
		h.internalError(w, "could not fetch products", err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	respondData(w, http.StatusOK, products)
}

// Get godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/products/{id} [get]
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := h.repo.GetByID(id)
	if errors.Is(err, repo.ErrProductNotFound) {
		respondMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.internalError(w, "could not fetch product", err)
		return
	}
	respondData(w, http.StatusOK, product)
}

// Create godoc
// @Summary Create a new product
// @Tags products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /api/products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if !validProductInput(req.Name, req.Price, req.Image) {
		respondMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	created, err := h.repo.Create(req.Name, req.Price, req.Image)
	if err != nil {
		h.internalError(w, "could not create product", err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

// Update godoc
// @Summary Replace a product's name, price and image
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if !validProductInput(req.Name, req.Price, req.Image) {
		respondMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	updated, err := h.repo.Update(id, req.Name, req.Price, req.Image)
	if errors.Is(err, repo.ErrProductNotFound) {
		respondMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.internalError(w, "could not update product", err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	deleted, err := h.repo.Delete(id)
	if errors.Is(err, repo.ErrProductNotFound) {
		respondMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.internalError(w, "could not delete product", err)
		return
	}
	respondData(w, http.StatusOK, deleted)
}

func (h *ProductHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.log.Errorw(msg, "error", err)
	respondMessage(w, http.StatusInternalServerError, "Internal Server Error")
}
