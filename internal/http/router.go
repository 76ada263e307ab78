package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/jwtx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService    *service.AuthService
	UserService    *service.UserService
	ProductService *service.ProductService
	CartService    *service.CartService
	OrderService   *service.OrderService

	// RevealResetTokens is passed through to the password-reset handler.
	RevealResetTokens bool
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	corsOrigins []string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProducts()
	r.registerCart()
	r.registerOrders()
	r.registerAccount()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:       r.AuthService,
		RevealResetTokens: r.RevealResetTokens,
	}

	// Registration and login carry credentials; both get the strict
	// per-IP limit to slow brute force and signup floods.
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/password-reset",
		httpx.Chain(http.HandlerFunc(h.HandlePasswordReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/password-reset/confirm",
		httpx.Chain(http.HandlerFunc(h.HandlePasswordResetConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerProducts() {
	h := &ProductsHandler{ProductService: r.ProductService}

	// Catalogue reads are public.
	r.Mux.Handle("GET /api/products",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /api/products/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Catalogue writes need a seller (or admin) session.
	r.Mux.Handle("POST /api/products",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			r.requireActive(),
			httpx.RequireRole("seller"),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /api/products/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			r.requireActive(),
			httpx.RequireRole("seller"),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/products/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.verifier),
			r.requireActive(),
			httpx.RequireRole("seller"),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	seller := &SellerHandler{ProductService: r.ProductService}
	r.Mux.Handle("GET /api/seller/stats",
		httpx.Chain(http.HandlerFunc(seller.HandleStats),
			httpx.AuthnMiddleware(r.verifier),
			r.requireActive(),
			httpx.RequireRole("seller"),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerCart() {
	h := &CartHandler{CartService: r.CartService}

	secured := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			r.requireActive(),
			httpx.RequireRole("customer"),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /api/cart", secured(h.HandleGet))
	r.Mux.Handle("POST /api/cart", secured(h.HandleSet))
	r.Mux.Handle("DELETE /api/cart", secured(h.HandleClear))
	r.Mux.Handle("DELETE /api/cart/{productID}", secured(h.HandleRemove))
}

func (r *Router) registerOrders() {
	h := &OrdersHandler{OrderService: r.OrderService}

	secured := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			r.requireActive(),
			httpx.RequireRole("customer"),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /api/orders", secured(h.HandleCheckout))
	r.Mux.Handle("GET /api/orders", secured(h.HandleList))
	r.Mux.Handle("GET /api/orders/{id}", secured(h.HandleGet))
	r.Mux.Handle("GET /api/orders/{id}/pay", secured(h.HandleIntent))
	r.Mux.Handle("POST /api/orders/{id}/pay", secured(h.HandleConfirmPayment))
	r.Mux.Handle("POST /api/orders/{id}/cancel", secured(h.HandleCancel))
}

func (r *Router) registerAccount() {
	h := &MeHandler{UserService: r.UserService}

	r.Mux.Handle("GET /api/me",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			r.requireActive(),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{UserService: r.UserService}

	secured := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			r.requireActive(),
			httpx.RequireRole("admin"),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /api/admin/users", secured(h.HandleListUsers))
	r.Mux.Handle("PUT /api/admin/users/{id}/active", secured(h.HandleSetActive))
	r.Mux.Handle("PUT /api/admin/sellers/{id}/verify", secured(h.HandleVerifySeller))
	r.Mux.Handle("GET /api/admin/sellers/stats", secured(h.HandleSellerStats))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
