// Package client is a Go client for the JSON share HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const (
	HeaderUserID = "X-User-ID"

	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 500 * time.Millisecond

	// largest stored content plus envelope
	maxResponseBytes = 101 << 20
)

var errNotRewindable = errors.New("client: upload body cannot be replayed")

type (
	Receipt struct {
		ShareID   string     `json:"shareId"`
		ExpiresAt *time.Time `json:"expiresAt"`
		CreatedAt time.Time  `json:"createdAt"`
		ShareURL  string     `json:"shareUrl"`
	}
	Share struct {
		Content   json.RawMessage `json:"content"`
		CreatedAt time.Time       `json:"createdAt"`
		ExpiresAt *time.Time      `json:"expiresAt"`
	}
	Summary struct {
		ID        uint64     `json:"id"`
		ShareID   string     `json:"shareId"`
		ExpiresAt *time.Time `json:"expiresAt"`
		CreatedAt time.Time  `json:"createdAt"`
		UpdatedAt time.Time  `json:"updatedAt"`
	}

	envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
)

// APIError is a failure reported by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jsonshare: %d %s: %s", e.Status, e.Code, e.Message)
}

// HasCode reports whether err is an *APIError with the given code.
func HasCode(err error, code string) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == code
}

type Client struct {
	baseURL    string
	ownerID    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// New returns a client for the API rooted at baseURL. ownerID is sent on
// every request that needs an owner.
func New(baseURL, ownerID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		ownerID:    ownerID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retries:    1,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadFile shares the JSON document at path. expiryDays is a day count or
// "permanent"; empty means permanent.
func (c *Client) UploadFile(ctx context.Context, path, expiryDays string) (*Receipt, error) {
	open := func() (io.ReadCloser, error) { return os.Open(path) }
	return c.upload(ctx, filepath.Base(path), open, expiryDays)
}

// Upload shares the document read from r. The request is retried only when r
// is also an io.Seeker.
func (c *Client) Upload(ctx context.Context, fileName string, r io.Reader, expiryDays string) (*Receipt, error) {
	used := false
	open := func() (io.ReadCloser, error) {
		if used {
			s, ok := r.(io.Seeker)
			if !ok {
				return nil, errNotRewindable
			}
			if _, err := s.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
		}
		used = true
		return io.NopCloser(r), nil
	}
	return c.upload(ctx, fileName, open, expiryDays)
}

func (c *Client) upload(ctx context.Context, fileName string, open func() (io.ReadCloser, error), expiryDays string) (*Receipt, error) {
	body := func() (io.ReadCloser, string, error) {
		src, err := open()
		if err != nil {
			return nil, "", err
		}

		// streamed, so the document never sits in memory whole
		pr, pw := io.Pipe()
		mw := multipart.NewWriter(pw)
		go func() {
			defer src.Close()
			pw.CloseWithError(writeForm(mw, fileName, src, expiryDays))
		}()

		return pr, mw.FormDataContentType(), nil
	}

	var out Receipt
	if err := c.do(ctx, http.MethodPost, "/api/shares", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeForm(mw *multipart.Writer, fileName string, src io.Reader, expiryDays string) error {
	if expiryDays != "" {
		if err := mw.WriteField("expiryDays", expiryDays); err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err = io.Copy(fw, src); err != nil {
		return err
	}
	return mw.Close()
}

func (c *Client) Get(ctx context.Context, shareID string) (*Share, error) {
	var out Share
	if err := c.do(ctx, http.MethodGet, "/api/shares/"+url.PathEscape(shareID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMine(ctx context.Context) ([]Summary, error) {
	out := []Summary{}
	if err := c.do(ctx, http.MethodGet, "/api/my-shares", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, shareID string) error {
	return c.do(ctx, http.MethodDelete, "/api/shares/"+url.PathEscape(shareID), nil, nil)
}

// do sends the request, retrying once on a transient network failure. HTTP
// error responses are never retried.
func (c *Client) do(ctx context.Context, method, path string, body func() (io.ReadCloser, string, error), out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(c.retryDelay):
			}
		}

		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("jsonshare: %s %s: %w", method, path, err)
			if ctx.Err() != nil || !isTransient(err) {
				return lastErr
			}
			continue
		}

		return decode(resp, out)
	}

	return lastErr
}

func (c *Client) newRequest(ctx context.Context, method, path string, body func() (io.ReadCloser, string, error)) (*http.Request, error) {
	var (
		rc io.ReadCloser
		ct string
	)
	if body != nil {
		var err error
		if rc, ct, err = body(); err != nil {
			return nil, err
		}
	}

	var reqBody io.Reader
	if rc != nil {
		reqBody = rc
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		if rc != nil {
			_ = rc.Close()
		}
		return nil, err
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set("Accept", "application/json")
	if c.ownerID != "" {
		req.Header.Set(HeaderUserID, c.ownerID)
	}

	return req, nil
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("jsonshare: read response: %w", err)
	}

	var env envelope
	if err = json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("jsonshare: decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		ae := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			ae.Code = env.Error.Code
			ae.Message = env.Error.Message
		}
		return ae
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err = json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("jsonshare: decode data: %w", err)
	}
	return nil
}

func isTransient(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
