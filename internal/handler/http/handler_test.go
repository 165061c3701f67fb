package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
)

func newTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()

	cfg := config.Server{
		HTTPAddress:   ":0",
		TokenSignKey:  "test-sign-key",
		TokenIssuer:   "table-server",
		TokenDuration: time.Hour,
	}
	h := NewHandler(NewTableStore(), cfg, logger.Nop())
	return h, h.Init()
}

func loginToken(t *testing.T, router http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"login":"operator","password":"secret"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	header := rec.Header().Get("Authorization")
	require.True(t, strings.HasPrefix(header, "Bearer "))
	return strings.TrimPrefix(header, "Bearer ")
}

func TestHandler_Login(t *testing.T) {
	h, router := newTestHandler(t)

	token := loginToken(t, router)

	parsed, err := h.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", parsed.Subject)
}

func TestHandler_Login_EmptyCredentials(t *testing.T) {
	_, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"login":"","password":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Login_InvalidJSON(t *testing.T) {
	_, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{nope`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Health(t *testing.T) {
	_, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_TableEndpointsRequireAuth(t *testing.T) {
	_, router := newTestHandler(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/table/orders"},
		{http.MethodPost, "/api/table/orders"},
		{http.MethodPut, "/api/table/orders/o1"},
		{http.MethodDelete, "/api/table/orders/o1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(`{"id":"o1"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestHandler_RejectsForgedToken(t *testing.T) {
	_, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/table/orders", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_TableCRUD(t *testing.T) {
	_, router := newTestHandler(t)
	token := loginToken(t, router)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/table/orders", `{"id":"o1","total":10}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// duplicate insert conflicts
	rec = do(http.MethodPost, "/api/table/orders", `{"id":"o1","total":10}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(http.MethodPut, "/api/table/orders/o1", `{"id":"o1","total":42}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodGet, "/api/table/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"o1","total":42}]`, rec.Body.String())

	rec = do(http.MethodDelete, "/api/table/orders/o1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodDelete, "/api/table/orders/o1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodPut, "/api/table/orders/o1", `{"id":"o1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTokenFromAuthHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc", want: "abc"},
		{name: "missing token", header: "Bearer", wantErr: ErrInvalidAuthorizationHeader},
		{name: "empty token", header: "Bearer ", wantErr: ErrEmptyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getTokenFromAuthHeader(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandler_ExpiredToken(t *testing.T) {
	cfg := config.Server{
		TokenSignKey:  "test-sign-key",
		TokenIssuer:   "table-server",
		TokenDuration: -time.Hour,
	}
	h := NewHandler(NewTableStore(), cfg, logger.Nop())
	router := h.Init()

	token, err := h.issueToken("operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/table/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token.SignedString)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
