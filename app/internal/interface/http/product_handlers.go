package http

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	domproduct "example.com/coffee-shop/app/internal/domain/product"
)

var errInvalidPrice = errors.New("price must be a decimal number")

type productRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=512"`
	Category    string `json:"category" validate:"required,max=64"`
	IsActive    *bool  `json:"is_active"`
}

type updateProductRequest struct {
	Name        string `json:"name" validate:"max=255"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=512"`
	Category    string `json:"category" validate:"max=64"`
	IsActive    *bool  `json:"is_active"`
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.catalogSvc.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.catalogSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.catalogSvc.Categories(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidPrice)
		return
	}

	p, err := a.catalogSvc.Create(r.Context(), &domproduct.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		IsActive:    req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(p))
}

// handleUpdateProduct applies the fields present in the body. An omitted
// is_active keeps the product active.
func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateProductRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var price decimal.Decimal
	if req.Price != "" {
		price, err = decimal.NewFromString(req.Price)
		if err != nil {
			respondError(w, http.StatusBadRequest, errInvalidPrice)
			return
		}
	}

	p, err := a.catalogSvc.Update(r.Context(), &domproduct.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		IsActive:    req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.catalogSvc.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
