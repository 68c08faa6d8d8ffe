// Package upstream talks to the external marketplace REST API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"agrimarket-backend/internal/metrics"
	"agrimarket-backend/internal/utils"
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx answer from the marketplace API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("marketplace api returned status %d", e.Status)
	}
	return fmt.Sprintf("marketplace api returned status %d: %s", e.Status, e.Message)
}

// FilePart is a file forwarded in a multipart request
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Client issues requests against the marketplace API base URL
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client whose every request is bounded by timeout
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetJSON fetches path and decodes the JSON body into out
func (c *Client) GetJSON(ctx context.Context, path, token string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, token, nil, "", out)
}

// GetRaw fetches path and returns the unwrapped JSON body
func (c *Client) GetRaw(ctx context.Context, path, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, token, nil, "", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PostJSON posts body as JSON and decodes the response into out, if out is non-nil
func (c *Client) PostJSON(ctx context.Context, path, token string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, path, token, body, out)
}

// PutJSON puts body as JSON and decodes the response into out, if out is non-nil
func (c *Client) PutJSON(ctx context.Context, path, token string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, path, token, body, out)
}

// Delete issues a DELETE on path
func (c *Client) Delete(ctx context.Context, path, token string) error {
	return c.do(ctx, http.MethodDelete, path, token, nil, "", nil)
}

// SendMultipart sends form fields and files as multipart/form-data
func (c *Client) SendMultipart(ctx context.Context, method, path, token string, fields map[string]string, files []FilePart, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return errors.Wrap(err, "write multipart field")
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return errors.Wrap(err, "create multipart file")
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return errors.Wrap(err, "copy multipart file")
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "close multipart writer")
	}
	return c.do(ctx, method, path, token, &buf, writer.FormDataContentType(), out)
}

func (c *Client) sendJSON(ctx context.Context, method, path, token string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request body")
	}
	return c.do(ctx, method, path, token, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out interface{}) error {
	url := utils.JoinURL(c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(method, "error").Inc()
		c.logger.Debug("upstream request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequests.WithLabelValues(method, "status_"+statusClass(resp.StatusCode)).Inc()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Message: extractMessage(raw)}
	}
	metrics.UpstreamRequests.WithLabelValues(method, "ok").Inc()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s %s", method, path)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapEnvelope(raw), out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

var envelopeKeys = map[string]bool{"success": true, "status": true, "message": true, "meta": true, "links": true}

// unwrapEnvelope strips a {"data": ...} wrapper when the object carries only envelope keys next to it
func unwrapEnvelope(raw []byte) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	data, ok := obj["data"]
	if !ok {
		return raw
	}
	for key := range obj {
		if key != "data" && !envelopeKeys[key] {
			return raw
		}
	}
	return data
}

// extractMessage pulls the human readable message from an error body
func extractMessage(raw []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	var msg string
	if err := json.Unmarshal(body.Error, &msg); err == nil {
		return msg
	}
	return ""
}

// UserMessage returns the API's own message for err, or generic
func UserMessage(err error, generic string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return generic
}

// HTTPStatus maps an upstream failure to the status the BFF answers with
func HTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
