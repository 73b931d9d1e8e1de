package http

import (
	"errors"
	"net/http"

	domcart "example.com/coffee-shop/app/internal/domain/cart"
	domcheckout "example.com/coffee-shop/app/internal/domain/checkout"
)

var errNoCheckoutInFlight = errors.New("no checkout in flight")

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// Quantity is a JSON number; fractions truncate and values below one remove
// the line.
type updateCartItemRequest struct {
	Quantity *float64 `json:"quantity" validate:"required"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getCartSession(r.Context())
	cart, err := a.cartSvc.Get(r.Context(), sessionID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(sessionID, cart))
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sessionID := getCartSession(r.Context())
	cart, err := a.cartSvc.AddItem(r.Context(), sessionID, req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCart(sessionID, cart))
}

func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sessionID := getCartSession(r.Context())
	quantity := domcart.NormalizeQuantity(*req.Quantity)
	cart, err := a.cartSvc.UpdateQuantity(r.Context(), sessionID, productID, quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(sessionID, cart))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sessionID := getCartSession(r.Context())
	cart, err := a.cartSvc.RemoveItem(r.Context(), sessionID, productID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(sessionID, cart))
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getCartSession(r.Context())
	if err := a.cartSvc.Clear(r.Context(), sessionID); err != nil {
		handleDomainError(w, err)
		return
	}
	a.checkoutSvc.Reset(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handleCheckout runs checkout for the cart session. The optional "from"
// query parameter is the route to return to after signing in.
func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := getCartSession(r.Context())
	outcome, err := a.checkoutSvc.Checkout(
		r.Context(),
		sessionID,
		a.cartSvc.Bind(sessionID),
		getSession(r.Context()),
		r.URL.Query().Get("from"),
	)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	switch outcome.Kind {
	case domcheckout.OutcomeSuccess:
		writeJSON(w, http.StatusCreated, map[string]any{
			"status":   outcome.Kind,
			"order_id": outcome.OrderID,
		})
	case domcheckout.OutcomeRequiresAuthentication:
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"status":      outcome.Kind,
			"redirect_to": outcome.RedirectTo,
			"from":        outcome.From,
			"message":     outcome.Message,
		})
	case domcheckout.OutcomeInFlight:
		writeJSON(w, http.StatusConflict, map[string]any{
			"status": outcome.Kind,
		})
	case domcheckout.OutcomeFailed:
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"status": outcome.Kind,
			"reason": outcome.Reason,
		})
	default:
		respondError(w, http.StatusInternalServerError, errors.New("unexpected checkout outcome "+string(outcome.Kind)))
	}
}

func (a *API) handleCheckoutState(w http.ResponseWriter, r *http.Request) {
	state := a.checkoutSvc.State(getCartSession(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

func (a *API) handleAbandonCheckout(w http.ResponseWriter, r *http.Request) {
	if !a.checkoutSvc.Abandon(getCartSession(r.Context())) {
		respondError(w, http.StatusConflict, errNoCheckoutInFlight)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "abandoned"})
}
