package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/internal/store/drivers/sqlite"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/cryptox"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ecobazaar-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	// The lockout tests need more login attempts than the strict
	// profile's default burst allows.
	httpx.StrictLimit.RequestsPerWindow = 1000
	httpx.StrictLimit.Burst = 1000

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256([]byte("test-secret-test-secret-test-secret"), "ecobazaar-test")
	require.NoError(t, err)

	tokens := &service.TokenService{Signer: signer, Issuer: "ecobazaar-test"}

	r := NewRouter(signer, "test", st, slog.New(slog.DiscardHandler), nil)
	r.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	r.UserService = &service.UserService{Store: st}
	r.ProductService = &service.ProductService{Store: st}
	r.CartService = &service.CartService{Store: st}
	r.OrderService = &service.OrderService{Store: st, PayeeVPA: "ecobazaar@upi", PayeeName: "EcoBazaarX"}
	r.RevealResetTokens = true
	r.ApplyRoutes()
	return r
}

func doJSON(t *testing.T, r *Router, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func registerAndLogin(t *testing.T, r *Router, username, email, role string) (string, api.Account) {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "hunter22",
		Role:     role,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var login api.LoginResponse
	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    email,
		Password: "hunter22",
	}, &login)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, login.Token)
	return login.Token, login.User
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)

	t.Run("register login me", func(t *testing.T) {
		token, user := registerAndLogin(t, r, "alice", "Alice@Example.com", "")
		require.Equal(t, "customer", user.Role)
		require.Equal(t, "alice@example.com", user.Email)

		var me api.Account
		rec := doJSON(t, r, http.MethodGet, "/api/me", token, nil, &me)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, user.ID, me.ID)
	})

	t.Run("me without token", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/me", "", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong password stays 401", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
			Email:    "alice@example.com",
			Password: "not-the-password",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), api.ErrorCodeInvalidCredentials)
	})
}

func TestLoginLockoutStatus(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "bob", "bob@example.com", "")

	bad := api.LoginRequest{Email: "bob@example.com", Password: "wrong-wrong"}
	for i := 0; i < 4; i++ {
		rec := doJSON(t, r, http.MethodPost, "/api/auth/login", "", bad, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/auth/login", "", bad, nil)
	require.Equal(t, http.StatusLocked, rec.Code)

	// Correct password does not bypass an active lock.
	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "bob@example.com",
		Password: "hunter22",
	}, nil)
	require.Equal(t, http.StatusLocked, rec.Code)
	require.Contains(t, rec.Body.String(), api.ErrorCodeAccountLocked)
}

func TestDeactivationEndsSession(t *testing.T) {
	r := newTestRouter(t)
	token, user := registerAndLogin(t, r, "frank", "frank@example.com", "")

	rec := doJSON(t, r, http.MethodGet, "/api/me", token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, r.store.Accounts().SetActive(context.Background(), user.ID, false))

	// The still-valid token stops working as soon as the account is
	// deactivated.
	rec = doJSON(t, r, http.MethodGet, "/api/me", token, nil, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), api.ErrorCodeAccountDeactivated)

	rec = doJSON(t, r, http.MethodGet, "/api/cart", token, nil, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "carol", "carol@example.com", "")

	var reset api.PasswordResetResponse
	rec := doJSON(t, r, http.MethodPost, "/api/auth/password-reset", "", api.PasswordResetRequest{
		Email: "carol@example.com",
	}, &reset)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, reset.ResetToken)

	// Unknown emails read identically.
	var ghost api.PasswordResetResponse
	rec = doJSON(t, r, http.MethodPost, "/api/auth/password-reset", "", api.PasswordResetRequest{
		Email: "nobody@example.com",
	}, &ghost)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, reset.Message, ghost.Message)
	require.Empty(t, ghost.ResetToken)

	rec = doJSON(t, r, http.MethodPost, "/api/auth/password-reset/confirm", "", api.PasswordResetConfirmRequest{
		Token:       reset.ResetToken,
		NewPassword: "new-password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "carol@example.com",
		Password: "new-password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProductRoutes(t *testing.T) {
	r := newTestRouter(t)
	sellerToken, _ := registerAndLogin(t, r, "greenmart", "shop@example.com", "seller")
	customerToken, _ := registerAndLogin(t, r, "dave", "dave@example.com", "")

	create := api.ProductRequest{
		Name:        "Bamboo Toothbrush",
		Category:    "personal-care",
		PricePaise:  9900,
		CarbonGrams: 120,
		Stock:       10,
	}

	t.Run("create requires seller", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/products", customerToken, create, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = doJSON(t, r, http.MethodPost, "/api/products", "", create, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var created api.Product
	rec := doJSON(t, r, http.MethodPost, "/api/products", sellerToken, create, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, created.ID)

	t.Run("public listing", func(t *testing.T) {
		var list api.ProductList
		rec := doJSON(t, r, http.MethodGet, "/api/products?category=personal-care", "", nil, &list)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, list.Products, 1)
		require.Equal(t, created.ID, list.Products[0].ID)
	})

	t.Run("get by id", func(t *testing.T) {
		var got api.Product
		rec := doJSON(t, r, http.MethodGet, "/api/products/"+created.ID, "", nil, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, int64(9900), got.PricePaise)

		rec = doJSON(t, r, http.MethodGet, "/api/products/missing", "", nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCheckoutRoutes(t *testing.T) {
	r := newTestRouter(t)
	sellerToken, _ := registerAndLogin(t, r, "greenmart", "shop@example.com", "seller")
	customerToken, _ := registerAndLogin(t, r, "erin", "erin@example.com", "")

	var product api.Product
	rec := doJSON(t, r, http.MethodPost, "/api/products", sellerToken, api.ProductRequest{
		Name:        "Solar Lantern",
		Category:    "home",
		PricePaise:  149900,
		CarbonGrams: 800,
		Stock:       5,
	}, &product)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/cart", customerToken, api.CartItemRequest{
		ProductID: product.ID,
		Quantity:  2,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order api.Order
	rec = doJSON(t, r, http.MethodPost, "/api/orders", customerToken, nil, &order)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "pending", order.Status)
	require.Equal(t, int64(299800), order.TotalPaise)

	t.Run("intent carries payee and amount", func(t *testing.T) {
		var intent api.PaymentIntent
		rec := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/orders/%s/pay", order.ID), customerToken, nil, &intent)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, intent.UPIURI, "pa=ecobazaar%40upi")
		require.Contains(t, intent.UPIURI, "am=2998.00")
	})

	t.Run("confirm marks paid", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/orders/%s/pay", order.ID), customerToken, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got api.Order
		rec = doJSON(t, r, http.MethodGet, "/api/orders/"+order.ID, customerToken, nil, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "paid", got.Status)
	})

	t.Run("sellers cannot read customer orders", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/orders/"+order.ID, sellerToken, nil, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestSystemRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/livez", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/readyz", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
