// Package gateway wraps all outbound requests to the check-management
// backend. It attaches the bearer token and device token headers, maps the
// backend's error envelope to error values, and drives the session
// side effects for authentication (401) and authorization (403) failures.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chequelab/carteira/internal/domain"
)

// Backend collection routes.
const (
	RouteAccesses    = "acesso/"
	RouteParties     = "responsavel/"
	RouteBanks       = "banco/"
	RouteAccounts    = "conta/"
	RouteChecks      = "cheque/"
	RoutePermissions = "permissao/"
)

// Session is what the gateway needs from the session store: the current
// credentials read at call time, and the mutations triggered by auth
// failures. Implemented by session.Store; the gateway never imports it.
type Session interface {
	// Token returns the current bearer token, or empty when logged out.
	Token() string
	// DeviceToken returns the device push-token header value.
	DeviceToken() string
	// Invalidate tears the session down after a 401.
	Invalidate()
	// DowngradePermissions replaces the cached user's permission set after
	// a 403. The token is kept.
	DowngradePermissions(perms []domain.Permission)
}

// errorEnvelope is the backend's error response body. The permission list is
// present only on 403 and carries the caller's corrected permission set.
type errorEnvelope struct {
	Message     string              `json:"mensagem"`
	Permissions []domain.Permission `json:"permissoes"`
}

// LoginResponse is the POST /login response body.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"mensagem"`
}

// MessageResponse is the generic {mensagem} response body.
type MessageResponse struct {
	Message string `json:"mensagem"`
}

// Client is the HTTP gateway to the backend.
type Client struct {
	baseURL string
	http    *http.Client
	session Session
	logger  zerolog.Logger
}

// New creates a gateway client. session may be nil for unauthenticated use.
func New(baseURL string, httpClient *http.Client, session Session, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: session,
		logger:  logger,
	}
}

// Get performs an authenticated GET on a route with optional query params.
func (c *Client) Get(ctx context.Context, route string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, route, params, nil, out, true)
}

// Post performs an authenticated POST on a collection route.
func (c *Client) Post(ctx context.Context, route string, body, out any) error {
	return c.do(ctx, http.MethodPost, route, nil, body, out, true)
}

// Put performs an authenticated PUT on a record.
func (c *Client) Put(ctx context.Context, route string, id int64, body, out any) error {
	return c.do(ctx, http.MethodPut, route+strconv.FormatInt(id, 10), nil, body, out, true)
}

// Delete performs an authenticated DELETE on a record.
func (c *Client) Delete(ctx context.Context, route string, id int64, out any) error {
	return c.do(ctx, http.MethodDelete, route+strconv.FormatInt(id, 10), nil, nil, out, true)
}

// Login authenticates with CPF and password. With forceDisconnect the
// backend invalidates any other active session for the same identity.
// Auth failure hooks do not run for login: there is no session to tear down.
func (c *Client) Login(ctx context.Context, cpf, password string, forceDisconnect bool) (*LoginResponse, error) {
	body := map[string]any{
		"cpf":      cpf,
		"senha":    password,
		"deslogar": forceDisconnect,
	}

	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "login", nil, body, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account credential.
func (c *Client) Register(ctx context.Context, name, cpf, email, password string) (string, error) {
	body := map[string]string{
		"nome":  name,
		"cpf":   cpf,
		"email": email,
		"senha": password,
	}

	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "registro", nil, body, &resp, false); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, route string, params url.Values, body, out any, authenticated bool) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(route, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		if authenticated {
			req.Header.Set("Authorization", "Bearer "+c.session.Token())
		}
		if device := c.session.DeviceToken(); device != "" {
			req.Header.Set("expotoken", device)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("route", route).Msg("request failed before a response")
		return ErrServerUnreachable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrServerUnreachable
	}

	if resp.StatusCode >= 400 {
		return c.handleError(resp.StatusCode, data, authenticated)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// handleError maps an HTTP error response onto an APIError and applies the
// session side effects: 401 tears the session down, 403 patches the cached
// permission set with the server-corrected list but keeps the token.
func (c *Client) handleError(status int, body []byte, authenticated bool) error {
	var envelope errorEnvelope
	// A malformed body still yields the right status; the message is then empty.
	_ = json.Unmarshal(body, &envelope)

	switch status {
	case http.StatusUnauthorized:
		if authenticated && c.session != nil {
			c.session.Invalidate()
		}
	case http.StatusForbidden:
		if authenticated && c.session != nil {
			c.logger.Warn().
				Interface("permissoes", envelope.Permissions).
				Msg("backend corrected the session permission set")
			c.session.DowngradePermissions(envelope.Permissions)
		}
	case http.StatusNotFound:
		if envelope.Message == "" {
			envelope.Message = msgNotFound
		}
	}

	if envelope.Message == "" {
		envelope.Message = http.StatusText(status)
	}

	return &APIError{Status: status, Message: envelope.Message}
}
