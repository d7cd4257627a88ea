package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TokenHeader carries the access token on every authenticated request.
const TokenHeader = "x-auth-token"

const defaultTimeout = 10 * time.Second

// Client talks to the resource-manager API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken attaches tok to subsequent requests.
func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// ClearToken drops the attached token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoginResult is the successful login/verify response body.
type LoginResult struct {
	Token string `json:"token"`
	Identity
}

type messageBody struct {
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// Health checks the API health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, email, firstName, lastName, password string) error {
	body := map[string]string{
		"email":     email,
		"firstName": firstName,
		"lastName":  lastName,
		"password":  password,
	}
	return c.do(ctx, http.MethodPost, "/api/auth/register", body, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*LoginResult, error) {
	body := map[string]string{"email": email, "otp": code}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify-otp", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/resend-otp", map[string]string{"email": email}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]string{"email": email, "otp": code, "password": newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", body, nil)
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*Identity, error) {
	var out Identity
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.currentToken(); tok != "" {
		req.Header.Set(TokenHeader, tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindServerUnreachable, Message: MsgServerNotResponding, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Kind: KindServerUnreachable, Message: MsgServerNotResponding, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return &APIError{Kind: KindRequestFailed, Message: "Unexpected response from server.", Status: resp.StatusCode, Err: err}
		}
		return nil
	}

	return c.classify(ctx, resp.StatusCode, path, data)
}

// classify turns a non-2xx response into a typed, user-presentable error.
func (c *Client) classify(ctx context.Context, status int, path string, data []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(data, &env)
	serverMsg := env.Error.Message
	if serverMsg == "" {
		serverMsg = env.Message
	}

	switch {
	case status == http.StatusNotFound:
		// A 404 is ambiguous: the backend may be down entirely or up
		// with a different route layout. Probe the bare origin to tell.
		if c.originReachable(ctx) {
			return &APIError{Kind: KindEndpointNotFound, Message: MsgEndpointNotFound, Status: status}
		}
		return &APIError{Kind: KindServerNotRunning, Message: MsgServerNotRunning, Status: status}
	case status == http.StatusUnauthorized && strings.HasSuffix(path, "/login"):
		return &APIError{Kind: KindInvalidCredentials, Message: MsgInvalidCredentials, Status: status}
	case strings.Contains(strings.ToLower(serverMsg), "already registered"):
		return &APIError{Kind: KindEmailTaken, Message: MsgDuplicateEmail, Status: status}
	}

	msg := serverMsg
	if msg == "" {
		msg = fmt.Sprintf("Request failed (%d).", status)
	}
	return &APIError{Kind: KindRequestFailed, Message: msg, Status: status}
}

// originReachable probes the server root with a short deadline. Any
// HTTP response at all counts as reachable, status irrelevant.
func (c *Client) originReachable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
