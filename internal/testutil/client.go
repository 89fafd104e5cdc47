// Package testutil provides testing utilities for integration tests.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// Client exercises the portal the way a browser would: it keeps cookies
// between requests and submits HTML forms.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client that follows redirects, like a browser.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Jar: jar},
	}
}

// NewClientNoRedirect creates a client that returns redirect responses
// as-is instead of following them. Use it to assert on status codes and
// Location headers.
func NewClientNoRedirect(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// GET performs a GET request.
func (c *Client) GET(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.HTTPClient.Do(req)
}

// PostForm submits an HTML form.
func (c *Client) PostForm(path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.HTTPClient.Do(req)
}

// Signup submits the signup form.
func (c *Client) Signup(name, email, password string) (*http.Response, error) {
	return c.PostForm("/signup", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	})
}

// Login submits the login form.
func (c *Client) Login(email, password string) (*http.Response, error) {
	return c.PostForm("/login", url.Values{
		"email":    {email},
		"password": {password},
	})
}

// Cookie returns the named cookie currently stored for the portal, or
// nil when absent.
func (c *Client) Cookie(name string) *http.Cookie {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil
	}
	for _, cookie := range c.HTTPClient.Jar.Cookies(u) {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// SetCookie plants a cookie into the client's jar, replacing any stored
// cookie with the same name.
func (c *Client) SetCookie(cookie *http.Cookie) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return
	}
	c.HTTPClient.Jar.SetCookies(u, []*http.Cookie{cookie})
}

// ClearCookies drops all stored cookies, turning the client anonymous.
func (c *Client) ClearCookies() {
	jar, _ := cookiejar.New(nil)
	c.HTTPClient.Jar = jar
}

// ReadBody reads and returns response body as string.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(body)
}

// RandomEmail returns a unique email address for test isolation.
func RandomEmail() string {
	return fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8])
}

// RandomName returns a unique display name with the given prefix.
func RandomName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}
