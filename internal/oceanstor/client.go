// Package oceanstor is a minimal client for the OceanStor DeviceManager REST
// API, limited to what a health check needs: a session, component listings
// and logout.
package oceanstor

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	units "github.com/docker/go-units"
	"github.com/jandubois/check-oceanstor/internal/health"
)

// DefaultPort is the DeviceManager REST port.
const DefaultPort = 8088

// PageSize is the number of components requested per range query.
const PageSize = 100

// MaxPages bounds the range queries made for one category.
const MaxPages = 1000

// invalidStatus marks a missing or unparsable HEALTHSTATUS. It classifies
// as unknown.
const invalidStatus = -1

// Config holds connection settings for one array.
type Config struct {
	Host      string // address, or a full base URL including the scheme
	Port      int
	SystemID  string
	Username  string
	Password  string
	VerifyTLS bool
	Timeout   time.Duration // per HTTP request
}

// Client talks to one array. It is not safe to share between goroutines
// except for Logout, which may race with an abandoned request.
type Client struct {
	baseURL    string
	systemID   string
	username   string
	password   string
	httpClient *http.Client
	log        *slog.Logger

	mu       sync.Mutex
	token    string
	deviceID string
}

// NewClient creates a client. No network traffic happens until Login.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Arrays ship with self-signed certificates.
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS} //nolint:gosec

	return &Client{
		baseURL:  baseURL(cfg.Host, cfg.Port),
		systemID: cfg.SystemID,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: transport,
		},
		log: slog.Default().With("component", "oceanstor", "system_id", cfg.SystemID),
	}, nil
}

func baseURL(host string, port int) string {
	if strings.Contains(host, "://") {
		return strings.TrimRight(host, "/")
	}
	return "https://" + net.JoinHostPort(host, strconv.Itoa(port))
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error APIError        `json:"error"`
}

type sessionData struct {
	DeviceID string `json:"deviceid"`
	Token    string `json:"iBaseToken"`
}

// Login opens a session. All failures are returned as *AuthError.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]any{
		"username": c.username,
		"password": c.password,
		"scope":    0,
	}

	var session sessionData
	if err := c.do(ctx, http.MethodPost, c.path(c.systemID, "sessions"), body, &session); err != nil {
		return &AuthError{Err: err}
	}
	if session.Token == "" {
		return &AuthError{Err: errors.New("session response carried no token")}
	}

	c.mu.Lock()
	c.token = session.Token
	c.deviceID = session.DeviceID
	if c.deviceID == "" {
		c.deviceID = c.systemID
	}
	c.mu.Unlock()

	c.log.Debug("logged in", "device_id", session.DeviceID)
	return nil
}

// Logout closes the session if one is open. It never fails; errors are
// only logged.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	token, deviceID := c.token, c.deviceID
	c.token = ""
	c.mu.Unlock()

	if token == "" {
		return
	}

	if err := c.doWithToken(ctx, http.MethodDelete, c.path(deviceID, "sessions"), nil, nil, token); err != nil {
		c.log.Debug("logout failed", "error", err)
		return
	}
	c.log.Debug("logged out")
}

// FetchCategory lists every component of a category, following range
// pagination. All failures are returned as *FetchError.
func (c *Client) FetchCategory(ctx context.Context, cat Category) ([]health.ComponentResult, error) {
	c.mu.Lock()
	token, deviceID := c.token, c.deviceID
	c.mu.Unlock()

	if token == "" {
		return nil, &FetchError{Category: cat.Name, Err: errors.New("not logged in")}
	}

	idField := cat.IdentifierField
	if idField == "" {
		idField = DefaultIdentifierField
	}

	start := time.Now()
	var results []health.ComponentResult
	var prevFirst string
	for page := 0; ; page++ {
		if page == MaxPages {
			return nil, &FetchError{Category: cat.Name, Err: fmt.Errorf("more than %d components", MaxPages*PageSize)}
		}
		offset := page * PageSize
		path := fmt.Sprintf("%s?range=[%d-%d]", c.path(deviceID, cat.Name), offset, offset+PageSize)

		var items []map[string]any
		if err := c.doWithToken(ctx, http.MethodGet, path, nil, &items, token); err != nil {
			return nil, &FetchError{Category: cat.Name, Err: err}
		}

		// An array that ignores the range parameter returns the same
		// page forever.
		if len(items) > 0 {
			first := fmt.Sprint(items[0])
			if page > 0 && first == prevFirst {
				return nil, &FetchError{Category: cat.Name, Err: fmt.Errorf("range [%d-%d] repeated the previous page", offset, offset+PageSize)}
			}
			prevFirst = first
		}

		for _, item := range items {
			results = append(results, health.ComponentResult{
				RawStatus:  parseStatus(item["HEALTHSTATUS"]),
				Category:   cat.Label,
				Identifier: identifier(item, idField),
			})
		}

		if len(items) < PageSize {
			break
		}
	}

	c.log.Debug("category fetched",
		"category", cat.Name,
		"components", len(results),
		"elapsed", units.HumanDuration(time.Since(start)),
	)
	return results, nil
}

func (c *Client) path(id, resource string) string {
	return fmt.Sprintf("/deviceManager/rest/%s/%s", id, resource)
}

func (c *Client) do(ctx context.Context, method, path string, body, data any) error {
	return c.doWithToken(ctx, method, path, body, data, "")
}

func (c *Client) doWithToken(ctx context.Context, method, path string, body, data any, token string) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("iBaseToken", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("response received",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"size", units.HumanSize(float64(len(raw))),
	)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error.Code != 0 {
		apiErr := env.Error
		return &apiErr
	}

	if data != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// parseStatus accepts the status as a JSON string or number.
func parseStatus(v any) int {
	switch s := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return invalidStatus
		}
		return n
	case float64:
		if s != float64(int(s)) {
			return invalidStatus
		}
		return int(s)
	default:
		return invalidStatus
	}
}

func identifier(item map[string]any, field string) string {
	if v, ok := item[field]; ok && v != nil {
		return fmt.Sprint(v)
	}
	if v, ok := item["ID"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
