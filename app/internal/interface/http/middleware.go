package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	domuser "example.com/coffee-shop/app/internal/domain/user"
)

// CartSessionHeader carries the cart session id in both directions.
const CartSessionHeader = "X-Cart-Session"

type ctxKey int

const (
	ctxSessionKey ctxKey = iota
	ctxCartSessionKey
)

var (
	errUnauthenticated = errors.New("unauthenticated")
	errForbidden       = errors.New("forbidden")
)

// sessionMiddleware attaches the auth session of the request. A request
// without a bearer token is anonymous; a bad token is rejected.
func (a *API) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := domuser.Anonymous()

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			s, err := a.authSvc.Authenticate(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			session = s
		}

		ctx := context.WithValue(r.Context(), ctxSessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !getSession(r.Context()).IsAuthenticated() {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireRoles(roles ...domuser.RoleCode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := getSession(r.Context()).CurrentUser()
			if !ok {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			for _, want := range roles {
				for _, have := range identity.Roles {
					if have == want {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			respondError(w, http.StatusForbidden, errForbidden)
		})
	}
}

// cartSessionMiddleware resolves the cart session id, issuing a new one when
// the client sent none or an invalid one. The id is echoed in the response.
func cartSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(CartSessionHeader)))
		if err != nil {
			id = uuid.New()
		}
		sessionID := id.String()
		w.Header().Set(CartSessionHeader, sessionID)

		ctx := context.WithValue(r.Context(), ctxCartSessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSession(ctx context.Context) domuser.Session {
	if s, ok := ctx.Value(ctxSessionKey).(domuser.Session); ok {
		return s
	}
	return domuser.Anonymous()
}

func getCartSession(ctx context.Context) string {
	s, _ := ctx.Value(ctxCartSessionKey).(string)
	return s
}
