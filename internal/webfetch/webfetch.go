// Package webfetch provides basic web fetching: body retrieval, file
// download, JSON exchange, and HTML link/text extraction.
package webfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/milkywaygod2/sysutil/internal/errors"
	"github.com/milkywaygod2/sysutil/internal/validation"
)

// DefaultTimeout bounds requests when the caller does not configure one.
const DefaultTimeout = 30 * time.Second

// Client wraps an http.Client with sysutil error reporting.
type Client struct {
	http *http.Client
}

// NewClient creates a fetch client with the given request timeout. A zero
// timeout uses DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := validation.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeValidationFailed, "invalid request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeHTTPStatus, "request failed", err).
			WithContext("url", rawURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, errors.ErrHTTPStatus(rawURL, resp.StatusCode)
	}

	return resp, nil
}

// Fetch downloads the content at a URL and returns it as a string.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeHTTPStatus, "failed to read body", err)
	}

	return string(body), nil
}

// DownloadFile streams the content at a URL to a local file.
func (c *Client) DownloadFile(ctx context.Context, rawURL, savePath string) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(savePath)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to create file", err).WithPath(savePath)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(savePath)
		return errors.NewNetworkError(errors.ErrCodeHTTPStatus, "download interrupted", err).
			WithContext("url", rawURL)
	}

	return out.Close()
}

// FetchJSON retrieves a URL and decodes the JSON response into out.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, out interface{}) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewNetworkError(errors.ErrCodeHTTPStatus, "failed to decode JSON", err).
			WithContext("url", rawURL)
	}
	return nil
}

// PostJSON sends payload as a JSON body and decodes the JSON response into
// out. A nil out discards the response body.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload, out interface{}) error {
	if err := validation.ValidateURL(rawURL); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, "payload is not JSON-encodable")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeValidationFailed, "invalid request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeHTTPStatus, "request failed", err).
			WithContext("url", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.ErrHTTPStatus(rawURL, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewNetworkError(errors.ErrCodeHTTPStatus, "failed to decode JSON", err)
	}
	return nil
}

// CheckURL reports whether a URL answers a HEAD request with a success
// status.
func (c *Client) CheckURL(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// URLParts holds the components of a parsed URL.
type URLParts struct {
	Scheme   string
	Host     string
	Path     string
	Query    string
	Fragment string
}

// ParseURL splits a URL into its components.
func ParseURL(rawURL string) (URLParts, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return URLParts{}, errors.NewValidationError(errors.ErrCodeValidationFailed, "invalid URL: "+rawURL)
	}

	return URLParts{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     u.Path,
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}, nil
}

// BuildURL appends query parameters to a base URL, preserving any existing
// query string.
func BuildURL(baseURL string, params map[string]string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeValidationFailed, "invalid URL: "+baseURL)
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
