// Package remote implements core.Transport over HTTP: every call is a
// single JSON POST to the backend, with the session cookie carried by a
// cookie jar ("credentials included").
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/aretw0/mdninja/pkg/core"
)

// CookieStore persists the cookies of the base URL between runs.
type CookieStore interface {
	LoadCookies() ([]*http.Cookie, error)
	SaveCookies(cookies []*http.Cookie) error
}

// Config holds the configuration of the HTTP transport.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client // Jar is replaced; Timeout is left as given
	Cookies    CookieStore
	Logger     *slog.Logger
}

// Client implements core.Transport.
type Client struct {
	base    *url.URL
	http    *http.Client
	cookies CookieStore
	logger  *slog.Logger

	mu       sync.Mutex
	requests int
	failures int
}

// NewClient creates a transport for baseURL and restores persisted cookies.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		hc = &copied
	}
	hc.Jar = jar

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		base:    base,
		http:    hc,
		cookies: cfg.Cookies,
		logger:  logger.With("component", "remote"),
	}

	if c.cookies != nil {
		saved, err := c.cookies.LoadCookies()
		if err != nil {
			return nil, fmt.Errorf("failed to load cookies: %w", err)
		}
		if len(saved) > 0 {
			jar.SetCookies(base, saved)
		}
	}
	return c, nil
}

// BaseURL returns the origin every path is resolved against.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Host returns the host part of the base URL (the site's parent domain).
func (c *Client) Host() string {
	return c.base.Host
}

// Request implements core.Transport.
func (c *Client) Request(ctx context.Context, path string, params any, out any) error {
	var body io.Reader = http.NoBody
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, path, out)
}

// Upload implements core.Transport. The multipart body is assembled in
// memory (the backend caps files at 10 MiB) so that progress can be reported
// against a known total.
func (c *Client) Upload(ctx context.Context, path string, upload core.Upload, progress core.ProgressFunc, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := upload.Filename
	if filename == "" {
		filename = upload.Name
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, upload.Body); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.WriteField("name", upload.Name); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	total := int64(buf.Len())
	var body io.Reader = &buf
	if progress != nil {
		body = &progressReader{r: &buf, total: total, report: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.do(req, path, out)
}

func (c *Client) endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.String() + path
}

// do runs req and maps the reply: 200 decodes into out, anything else is a
// *core.APIError carrying the parsed error body.
func (c *Client) do(req *http.Request, path string, out any) error {
	c.count(false)

	resp, err := c.http.Do(req)
	if err != nil {
		c.count(true)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if len(resp.Cookies()) > 0 {
		c.persistCookies()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.count(true)
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("response", "path", path, "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode != http.StatusOK {
		c.count(true)
		apiErr := &core.APIError{Path: path, StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, &apiErr.Response); err != nil {
			apiErr.Raw = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.count(true)
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) persistCookies() {
	if c.cookies == nil {
		return
	}
	if err := c.cookies.SaveCookies(c.http.Jar.Cookies(c.base)); err != nil {
		c.logger.Warn("failed to persist cookies", "error", err)
	}
}

func (c *Client) count(failure bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if failure {
		c.failures++
		return
	}
	c.requests++
}

// progressReader reports the share of the body consumed by the HTTP client.
type progressReader struct {
	r      io.Reader
	read   int64
	total  int64
	report core.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		p.report(100.0 * float64(p.read) / float64(p.total))
	}
	return n, err
}

var _ core.Transport = (*Client)(nil)
