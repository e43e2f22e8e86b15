package xero

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
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/utils"
	"github.com/prperemyshlev/jobdesk/pkg/observability"
	"go.uber.org/zap"
)

// ClientConfig holds the Xero endpoints the client talks to
type ClientConfig struct {
	APIBaseURL     string
	ConnectionsURL string
	RevocationURL  string
	Timeout        time.Duration
}

// Client is a thin Xero accounting API client. It carries no per-user state;
// every call takes the caller's Session.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	refresher  *Refresher
	validate   *validator.Validate
	logger     *zap.Logger
	requests   *observability.Counter
}

// Session is a request-scoped view of one user's token record. The refresher
// updates the token in place so later calls on the same session reuse a
// renewed access token.
type Session struct {
	token *domain.XeroToken
}

// NewSession wraps a token record loaded for the current request
func NewSession(tok *domain.XeroToken) *Session {
	return &Session{token: tok}
}

// Token returns the underlying record
func (s *Session) Token() *domain.XeroToken {
	if s == nil {
		return nil
	}
	return s.token
}

// NewClient creates a new Xero API client
func NewClient(cfg ClientConfig, httpClient *http.Client, refresher *Refresher, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		refresher:  refresher,
		validate:   validator.New(),
		logger:     logger,
		requests:   observability.NewCounter("xero_api_requests_total", "Xero API requests by resource and status"),
	}
}

// do performs an authenticated API call. out may be nil.
func (c *Client) do(ctx context.Context, s *Session, method, path string, query url.Values, body, out interface{}) error {
	tok := s.Token()
	if tok == nil || !tok.HasTokens() {
		return ErrNotConnected
	}

	accessToken, err := c.refresher.EnsureValidAccessToken(ctx, tok)
	if err != nil {
		return err
	}

	tenantID := tok.Tenant()
	if tenantID == "" {
		return ErrTenantNotSelected
	}

	endpoint := strings.TrimRight(c.cfg.APIBaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Xero-Tenant-Id", tenantID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.send(ctx, req, resource(path), out); err != nil {
		return err
	}

	if out != nil {
		if err := c.validate.Struct(out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}

func (c *Client) send(ctx context.Context, req *http.Request, resourceName string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.requests.Add(ctx, 1, "resource", resourceName, "status", "transport_error")
		return fmt.Errorf("xero request failed: %w", err)
	}
	defer resp.Body.Close()

	c.requests.Add(ctx, 1, "resource", resourceName, "status", strconv.Itoa(resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read xero response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &RemoteAPIError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
		c.logger.Warn("Xero API error",
			zap.String("method", req.Method),
			zap.String("resource", resourceName),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail),
		)
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}

// errorDetail extracts the most specific message from an error body, falling
// back to the truncated raw body
func errorDetail(raw []byte) string {
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if d := body.detail(); d != "" {
			return utils.Truncate(d, maxErrorDetail)
		}
	}
	return utils.Truncate(strings.TrimSpace(string(raw)), maxErrorDetail)
}

func resource(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(p)
}
