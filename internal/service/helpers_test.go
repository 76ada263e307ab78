package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/internal/store/drivers/sqlite"
	"github.com/ecobazaarx/ecobazaar/pkg/cryptox"
	"github.com/ecobazaarx/ecobazaar/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ecobazaar-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestAuth(t *testing.T) (*AuthService, store.Store) {
	t.Helper()

	st := newTestStore(t)
	signer, err := jwtx.NewHS256([]byte("test-secret-test-secret-test-secret"), "ecobazaar-test")
	require.NoError(t, err)
	auth := &AuthService{
		Store: st,
		Tokens: &TokenService{
			Signer: signer,
			Issuer: "ecobazaar-test",
		},
	}
	return auth, st
}
