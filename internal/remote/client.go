package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/logger"
	"github.com/julianstephens/topthree/internal/models"
)

// StatusError is returned for any unexpected HTTP status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return cerrors.ErrSync }

// Client talks to the sync API over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *log.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying client. Its timeout is kept.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithClientLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient returns a client for the server at baseURL, authenticating with token.
func NewClient(baseURL, token string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid remote URL %q", baseURL)
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("API token is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + constants.APIPrefix,
		token:   token,
		http:    &http.Client{Timeout: constants.DefaultRemoteTimeout},
		log:     logger.With("component", "remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) FetchToday(ctx context.Context, date string) (*models.DailyRecord, error) {
	var rec models.DailyRecord
	code, err := c.do(ctx, http.MethodGet, "/today", date, nil, &rec, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, nil
	}
	return &rec, nil
}

func (c *Client) PushToday(ctx context.Context, rec models.DailyRecord) error {
	_, err := c.do(ctx, http.MethodPut, "/today", rec.Date, rec, nil, http.StatusNoContent, http.StatusOK)
	return err
}

func (c *Client) FetchStats(ctx context.Context, date string) (*models.Stats, error) {
	var stats models.Stats
	code, err := c.do(ctx, http.MethodGet, "/stats", date, nil, &stats, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNoContent {
		return nil, nil
	}
	return &stats, nil
}

func (c *Client) SubmitToday(ctx context.Context, date string) (SubmitResult, error) {
	code, err := c.do(ctx, http.MethodPost, "/submit", date, nil, nil, http.StatusCreated, http.StatusOK, http.StatusConflict)
	if err != nil {
		return SubmitAccepted, err
	}
	if code == http.StatusConflict {
		return SubmitAlreadySubmitted, nil
	}
	return SubmitAccepted, nil
}

// do sends one request and decodes the body into out when the status is 200.
// Any status outside expected becomes a *StatusError.
func (c *Client) do(ctx context.Context, method, path, date string, in, out interface{}, expected ...int) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	endpoint := c.baseURL + path
	if date != "" {
		endpoint += "?" + url.Values{"date": {date}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %v", cerrors.ErrSync, method, path, err)
	}
	defer res.Body.Close()

	c.log.Debug("Remote call", "method", method, "path", path, "status", res.StatusCode, "request_id", reqID, "duration", time.Since(start))

	ok := false
	for _, code := range expected {
		if res.StatusCode == code {
			ok = true
			break
		}
	}
	if !ok {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return res.StatusCode, &StatusError{
			Method: method,
			Path:   path,
			Code:   res.StatusCode,
			Body:   strings.TrimSpace(string(msg)),
		}
	}

	if out != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.StatusCode, fmt.Errorf("%w: failed to decode %s response: %v", cerrors.ErrSync, path, err)
		}
	}
	return res.StatusCode, nil
}
