package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

func newTestRemoteStore(t *testing.T, handler http.Handler) RemoteStore {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	remote, err := NewHTTPRemoteStore(
		config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: 2 * time.Second},
		config.ClientApp{HashKey: "test-hash-key"},
		logger.Nop(),
	)
	require.NoError(t, err)
	return remote
}

func signTestToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: subject})
	signed, err := token.SignedString([]byte("test-sign-key"))
	require.NoError(t, err)
	return signed
}

func TestHTTPRemoteStore_Login(t *testing.T) {
	signed := signTestToken(t, "operator")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var user models.User
		require.NoError(t, json.NewDecoder(r.Body).Decode(&user))
		assert.Equal(t, "operator", user.Login)

		w.Header().Set("Authorization", "Bearer "+signed)
		w.WriteHeader(http.StatusOK)
	})

	remote := newTestRemoteStore(t, mux)

	err := remote.Login(context.Background(), models.User{Login: "operator", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, signed, remote.Token())
}

func TestHTTPRemoteStore_Login_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	remote := newTestRemoteStore(t, mux)

	err := remote.Login(context.Background(), models.User{Login: "operator", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, remote.Token())
}

func TestHTTPRemoteStore_Insert(t *testing.T) {
	var gotHash, gotClientID string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/table/orders", func(w http.ResponseWriter, r *http.Request) {
		gotHash = r.Header.Get("HashSHA256")
		gotClientID = r.Header.Get("X-Client-ID")

		var record map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		assert.Equal(t, "o1", record["id"])

		w.WriteHeader(http.StatusCreated)
	})

	remote := newTestRemoteStore(t, mux)

	err := remote.Insert(context.Background(), "orders", json.RawMessage(`{"id":"o1"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, gotHash)
	assert.NotEmpty(t, gotClientID)
}

func TestHTTPRemoteStore_Insert_Conflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/table/orders", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "row exists", http.StatusConflict)
	})

	remote := newTestRemoteStore(t, mux)

	err := remote.Insert(context.Background(), "orders", json.RawMessage(`{"id":"o1"}`))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestHTTPRemoteStore_Update_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/table/orders/o1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such row", http.StatusNotFound)
	})

	remote := newTestRemoteStore(t, mux)

	err := remote.Update(context.Background(), "orders", "o1", json.RawMessage(`{"id":"o1"}`))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPRemoteStore_Delete_AbsentRowIsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/table/orders/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such row", http.StatusNotFound)
	})

	remote := newTestRemoteStore(t, mux)

	err := remote.Delete(context.Background(), "orders", "gone")
	assert.NoError(t, err)
}

func TestHTTPRemoteStore_Select(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/table/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"o1"},{"id":"o2"}]`))
	})

	remote := newTestRemoteStore(t, mux)

	rows, err := remote.Select(context.Background(), "orders", "")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"o1"},{"id":"o2"}]`, string(rows))
}

func TestHTTPRemoteStore_Select_ForwardsQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/table/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	remote := newTestRemoteStore(t, mux)

	_, err := remote.Select(context.Background(), "orders", "status=open")
	require.NoError(t, err)
}

func TestHTTPRemoteStore_Select_InvalidBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/table/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not-json`))
	})

	remote := newTestRemoteStore(t, mux)

	_, err := remote.Select(context.Background(), "orders", "")
	assert.Error(t, err)
}

func TestHTTPRemoteStore_Health(t *testing.T) {
	healthy := true

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	remote := newTestRemoteStore(t, mux)

	require.NoError(t, remote.Health(context.Background()))

	healthy = false
	assert.Error(t, remote.Health(context.Background()))
}

func TestHTTPRemoteStore_AttachesBearerToken(t *testing.T) {
	var gotAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/table/orders", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})

	remote := newTestRemoteStore(t, mux)
	remote.SetToken("abc.def.ghi")

	_, err := remote.Select(context.Background(), "orders", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc.def.ghi", gotAuth)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "full url", raw: "http://localhost:8080", want: "http://localhost:8080"},
		{name: "missing scheme", raw: "localhost:8080", want: "http://localhost:8080"},
		{name: "trailing slash", raw: "http://localhost:8080/", want: "http://localhost:8080"},
		{name: "empty", raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc", want: "abc"},
		{name: "padded", header: "  Bearer abc  ", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "no token", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBearerToken(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
