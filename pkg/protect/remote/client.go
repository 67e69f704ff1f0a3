// Package remote is the HTTP client of a confidential-data protection service
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/protect"
)

// APIError is a non-2xx answer from the service
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("protection service: %s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("protection service: %s (status %d)", e.Message, e.Status)
}

type protectRequest struct {
	Data  map[string]string `json:"data"`
	Name  string            `json:"name"`
	Owner string            `json:"owner"`
}

type protectResponse struct {
	Handle string `json:"handle"`
}

type revealRequest struct {
	Schema    map[string]string `json:"schema"`
	Requester string            `json:"requester"`
}

type revealResponse struct {
	Values []string `json:"values"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Client implements protect.Protector over HTTP
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

var _ protect.Protector = (*Client)(nil)

// NewClient creates a client for baseURL. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		log: log.Named("remote"),
	}
}

// Protect stores the payload and returns its handle
func (c *Client) Protect(ctx context.Context, req protect.ProtectRequest) (string, error) {
	body := protectRequest{
		Data:  req.Payload,
		Name:  req.Metadata.Name,
		Owner: req.Metadata.Owner.Hex(),
	}

	var resp protectResponse
	if err := c.post(ctx, "/v1/protected-data", body, &resp); err != nil {
		return "", fmt.Errorf("failed to protect data: %w", err)
	}
	return resp.Handle, nil
}

// Unprotect reveals the values behind req.Handle
func (c *Client) Unprotect(ctx context.Context, req protect.UnprotectRequest) ([]string, error) {
	body := revealRequest{
		Schema:    req.Schema,
		Requester: req.Requester.Hex(),
	}

	var resp revealResponse
	path := "/v1/protected-data/" + url.PathEscape(req.Handle) + "/reveal"
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to reveal data: %w", err)
	}
	return resp.Values, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorResponse
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	}
	return apiErr
}
