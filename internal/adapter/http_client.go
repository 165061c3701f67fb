// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tilldesk/go-offline-sync/internal/config"
	"github.com/tilldesk/go-offline-sync/internal/logger"
	"github.com/tilldesk/go-offline-sync/models"
)

const hashHeader = "HashSHA256"

type httpRemoteStore struct {
	client *resty.Client

	hashKey  string
	clientID string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of [RemoteStore].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and request
// timeout. Each adapter instance gets a stable X-Client-ID so the change feed
// can filter out a client's own mutations.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteStore(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpRemoteStore{
		client:   client,
		hashKey:  appCfg.HashKey,
		clientID: uuid.NewString(),
		logger:   logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RemoteStore]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent authenticated requests.
func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteStore]. It returns the bearer token currently held
// by the adapter, or an empty string if none has been set.
func (h *httpRemoteStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Login implements [RemoteStore]. It POSTs the credentials to
// POST /api/auth/login. On success the bearer token is extracted from the
// Authorization response header and stored via SetToken. Returns an error if
// the request fails, the server returns a non-2xx status, or the token cannot
// be parsed.
func (h *httpRemoteStore) Login(ctx context.Context, user models.User) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/auth/login")
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("login parse bearer token: %w", err)
	}

	if subject, subErr := tokenSubject(token); subErr == nil {
		h.logger.Info().
			Str("func", "httpRemoteStore.Login").
			Str("subject", subject).
			Msg("remote session established")
	}

	h.SetToken(token)
	return nil
}

// Insert implements [RemoteStore]. It POSTs the raw record to
// POST /api/table/{table}. A transport integrity hash covering the payload is
// attached when a hash key is configured. Returns [ErrConflict] (wrapped) on
// HTTP 409.
func (h *httpRemoteStore) Insert(ctx context.Context, table string, record json.RawMessage) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(hashHeader, h.computeTransportHash(record)).
		SetBody([]byte(record)).
		Post("/api/table/" + url.PathEscape(table))
	if err != nil {
		return fmt.Errorf("insert request (table=%s): %w", table, err)
	}

	return mapHTTPError(resp)
}

// Update implements [RemoteStore]. It PUTs the raw record to
// PUT /api/table/{table}/{id}. Returns [ErrNotFound] (wrapped) on HTTP 404.
func (h *httpRemoteStore) Update(ctx context.Context, table string, rowID string, record json.RawMessage) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(hashHeader, h.computeTransportHash(record)).
		SetBody([]byte(record)).
		Put("/api/table/" + url.PathEscape(table) + "/" + url.PathEscape(rowID))
	if err != nil {
		return fmt.Errorf("update request (table=%s, id=%s): %w", table, rowID, err)
	}

	return mapHTTPError(resp)
}

// Delete implements [RemoteStore]. It sends DELETE /api/table/{table}/{id}.
// A 404 response is treated as success so an already-applied delete replays
// cleanly.
func (h *httpRemoteStore) Delete(ctx context.Context, table string, rowID string) error {
	resp, err := h.authedRequest(ctx).
		Delete("/api/table/" + url.PathEscape(table) + "/" + url.PathEscape(rowID))
	if err != nil {
		return fmt.Errorf("delete request (table=%s, id=%s): %w", table, rowID, err)
	}

	if mapped := mapHTTPError(resp); mapped != nil {
		if resp.StatusCode() == 404 {
			return nil
		}
		return mapped
	}

	return nil
}

// Select implements [RemoteStore]. It GETs rows of the named table from
// GET /api/table/{table}, forwarding query as the URL query string, and
// returns the body as a raw JSON array. Returns an error if the request fails
// or the body is not valid JSON.
func (h *httpRemoteStore) Select(ctx context.Context, table string, query string) (json.RawMessage, error) {
	req := h.authedRequest(ctx)
	if query != "" {
		req.SetQueryString(query)
	}

	resp, err := req.Get("/api/table/" + url.PathEscape(table))
	if err != nil {
		return nil, fmt.Errorf("select request (table=%s): %w", table, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode select response (table=%s): invalid json", table)
	}

	return json.RawMessage(body), nil
}

// Health implements [RemoteStore]. It GETs /api/health and maps any non-2xx
// response to an error.
func (h *httpRemoteStore) Health(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("X-Client-ID", h.clientID)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func (h *httpRemoteStore) computeTransportHash(payload []byte) string {
	if h.hashKey == "" {
		return ""
	}

	mac := hmac.New(sha256.New, []byte(h.hashKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", fmt.Errorf("empty authorization header")
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("authorization header is not a bearer token")
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", fmt.Errorf("empty bearer token")
	}

	return token, nil
}

// tokenSubject extracts the subject claim without verifying the signature.
// The adapter never trusts the claim for authorisation, it is used for
// logging only.
func tokenSubject(token string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", err
	}

	return claims.GetSubject()
}
