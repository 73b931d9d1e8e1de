package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcart "example.com/coffee-shop/app/internal/domain/cart"
	domcheckout "example.com/coffee-shop/app/internal/domain/checkout"
	domorder "example.com/coffee-shop/app/internal/domain/order"
	domproduct "example.com/coffee-shop/app/internal/domain/product"
	domuser "example.com/coffee-shop/app/internal/domain/user"
	authuc "example.com/coffee-shop/app/internal/usecase/auth"
	cartuc "example.com/coffee-shop/app/internal/usecase/cart"
	cataloguc "example.com/coffee-shop/app/internal/usecase/catalog"
	checkoutuc "example.com/coffee-shop/app/internal/usecase/checkout"
	orderuc "example.com/coffee-shop/app/internal/usecase/order"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type API struct {
	authSvc     *authuc.Service
	catalogSvc  *cataloguc.Service
	cartSvc     *cartuc.Service
	checkoutSvc *checkoutuc.Service
	orderSvc    *orderuc.Service
	health      map[string]HealthCheck
	validator   *validator.Validate
	logger      *zap.Logger
}

type Dependencies struct {
	AuthService     *authuc.Service
	CatalogService  *cataloguc.Service
	CartService     *cartuc.Service
	CheckoutService *checkoutuc.Service
	OrderService    *orderuc.Service
	// HealthChecks are served under /health/{name}.
	HealthChecks map[string]HealthCheck
	Logger       *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		authSvc:     deps.AuthService,
		catalogSvc:  deps.CatalogService,
		cartSvc:     deps.CartService,
		checkoutSvc: deps.CheckoutService,
		orderSvc:    deps.OrderService,
		health:      deps.HealthChecks,
		validator:   validator.New(),
		logger:      logger,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/{name}", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.sessionMiddleware)

		r.Post("/auth/signin", a.handleSignIn)
		r.Post("/auth/signup", a.handleSignUp)

		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)
		r.Get("/categories", a.handleListCategories)

		r.Group(func(cr chi.Router) {
			cr.Use(cartSessionMiddleware)
			cr.Get("/cart", a.handleGetCart)
			cr.Delete("/cart", a.handleClearCart)
			cr.Post("/cart/items", a.handleAddCartItem)
			cr.Put("/cart/items/{productID}", a.handleUpdateCartItem)
			cr.Delete("/cart/items/{productID}", a.handleRemoveCartItem)

			cr.Post("/cart/checkout", a.handleCheckout)
			cr.Get("/cart/checkout", a.handleCheckoutState)
			cr.Delete("/cart/checkout", a.handleAbandonCheckout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(requireAuth)
			pr.Get("/me/orders", a.handleListMyOrders)
		})

		r.Group(func(ar chi.Router) {
			ar.Use(requireAuth)
			ar.Use(requireRoles(domuser.RoleAdmin))

			ar.Route("/admin", func(admin chi.Router) {
				admin.Route("/products", func(rr chi.Router) {
					rr.Post("/", a.handleCreateProduct)
					rr.Put("/{id}", a.handleUpdateProduct)
					rr.Delete("/{id}", a.handleDeleteProduct)
				})

				admin.Route("/orders", func(rr chi.Router) {
					rr.Get("/", a.handleListOrders)
					rr.Get("/{id}", a.handleGetOrder)
					rr.Patch("/{id}", a.handleUpdateOrderStatus)
				})
			})
		})
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	check, ok := a.health[name]
	if !ok {
		respondError(w, http.StatusNotFound, errors.New(name+" is not configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := check(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, errors.New(name+" ping error: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": name + " ok"})
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapUser(u *domuser.User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"roles":    u.Roles,
	}
}

func mapProduct(p *domproduct.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.StringFixed(2),
		"image_url":   p.ImageURL,
		"category":    p.Category,
		"is_active":   p.IsActive,
	}
}

func mapCart(sessionID string, cart *domcart.Cart) map[string]any {
	lines := cart.Items()
	items := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		items = append(items, map[string]any{
			"product_id":  line.ProductID,
			"name":        line.Name,
			"description": line.Description,
			"image_url":   line.ImageURL,
			"unit_price":  line.UnitPrice.StringFixed(2),
			"quantity":    line.Quantity,
			"subtotal":    line.Subtotal().StringFixed(2),
		})
	}
	summary := domcart.Summarize(lines)
	return map[string]any{
		"session_id":  sessionID,
		"items":       items,
		"total_items": summary.TotalItems,
		"subtotal":    summary.Subtotal.StringFixed(2),
		"tax":         summary.Tax.StringFixed(2),
		"total":       summary.Total.StringFixed(2),
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"name":       item.Name,
			"price":      item.Price.StringFixed(2),
			"quantity":   item.Quantity,
		})
	}

	return map[string]any{
		"id":         o.ID,
		"number":     o.Number,
		"user_id":    o.UserID,
		"status":     o.Status,
		"subtotal":   o.Subtotal.StringFixed(2),
		"tax":        o.Tax.StringFixed(2),
		"total":      o.Total.StringFixed(2),
		"created_at": o.CreatedAt,
		"items":      items,
	}
}

func mapOrders(orders []*domorder.Order) []map[string]any {
	out := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrder(o))
	}
	return out
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domuser.ErrInvalidRoleCode),
		errors.Is(err, domuser.ErrInvalidCredential):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domuser.ErrUsernameTaken),
		errors.Is(err, domuser.ErrEmailAlreadyUsed):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domuser.ErrUserNotFound),
		errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domuser.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domcheckout.ErrCheckoutAbandoned):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domproduct.ErrInvalidProduct),
		errors.Is(err, domproduct.ErrNegativePrice),
		errors.Is(err, domorder.ErrEmptyOrderItems),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domcheckout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
