// Package webpanel talks to the ZuPOS web panel: cookie based sign-in,
// session probing, logout and the menu tree endpoint.
package webpanel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SessionMarker is stored instead of a token when the backend session lives
// in cookies. It is never sent as a bearer token.
const SessionMarker = "session-based"

const maxBodySize = 4 << 20

var (
	ErrSignInRejected   = errors.New("web panel rejected sign-in")
	ErrUnexpectedStatus = errors.New("unexpected web panel status")
)

// Config configures a Client.
type Config struct {
	WebPanelURL string
	// APIBaseURL serves the JSON endpoints such as the menu list. It
	// defaults to {WebPanelURL}/api.
	APIBaseURL string

	SignInTimeout   time.Duration
	ValidateTimeout time.Duration
	MenuTimeout     time.Duration

	// HTTPClient is cloned per call so each call gets its own cookie jar.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Credentials are the fields of the web panel login form.
type Credentials struct {
	BranchNo string
	UserName string
	Password string
}

// Cookie is a backend cookie kept for one panel session.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is what a call needs to act on behalf of a panel session.
type Session struct {
	Token   string
	Cookies []Cookie
}

// Client is safe for concurrent use. It holds no per-session state.
type Client struct {
	base    *url.URL
	apiBase *url.URL
	cfg     Config
	http    *http.Client
	logger  *slog.Logger
}

// NewClient validates the base URL and fills timeout defaults.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.WebPanelURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid web panel url %q", cfg.WebPanelURL)
	}
	apiBase := base.JoinPath("api")
	if cfg.APIBaseURL != "" {
		apiBase, err = url.Parse(strings.TrimRight(cfg.APIBaseURL, "/"))
		if err != nil || apiBase.Scheme == "" || apiBase.Host == "" {
			return nil, fmt.Errorf("invalid api base url %q", cfg.APIBaseURL)
		}
	}
	if cfg.SignInTimeout <= 0 {
		cfg.SignInTimeout = 10 * time.Second
	}
	if cfg.ValidateTimeout <= 0 {
		cfg.ValidateTimeout = 5 * time.Second
	}
	if cfg.MenuTimeout <= 0 {
		cfg.MenuTimeout = 10 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:    base,
		apiBase: apiBase,
		cfg:     cfg,
		http:    hc,
		logger:  logger.With("component", "webpanel"),
	}, nil
}

// BaseURL is the web panel root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// SignIn posts the login form and returns the cookies the web panel set.
// A 200 only means the form was accepted; callers still have to confirm
// the session with ValidateSession.
func (c *Client) SignIn(ctx context.Context, creds Credentials) ([]Cookie, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SignInTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("BranchNo", creds.BranchNo)
	form.Set("UserName", creds.UserName)
	form.Set("Password", creds.Password)
	form.Set("IsRememberMe", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/Login/SignIn"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/json")

	jar, hc := c.sessionClient(nil)
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign-in: %w", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("sign-in rejected", "status", resp.StatusCode, "user", creds.UserName, "branch", creds.BranchNo)
		return nil, fmt.Errorf("%w: status %d", ErrSignInRejected, resp.StatusCode)
	}
	return c.export(jar), nil
}

// ValidateSession loads the home page with the session's cookies. The
// session is valid when the page loads and is not the login page.
func (c *Client) ValidateSession(ctx context.Context, s Session) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ValidateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/Home/Index"), nil)
	if err != nil {
		return false, fmt.Errorf("build validate request: %w", err)
	}
	c.authorize(req, s)

	_, hc := c.sessionClient(s.Cookies)
	resp, err := hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("validate session: %w", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return false, fmt.Errorf("read home page: %w", err)
	}
	return !LooksLikeLoginPage(body), nil
}

// LooksLikeLoginPage is the only place that decides, from page content,
// that the web panel sent us back to its login screen.
func LooksLikeLoginPage(body []byte) bool {
	return bytes.Contains(body, []byte("Login")) || bytes.Contains(body, []byte("Giriş"))
}

// Logout ends the backend session. Failures are logged and otherwise
// ignored.
func (c *Client) Logout(ctx context.Context, s Session) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/Login/Logout"), http.NoBody)
	if err != nil {
		c.logger.Warn("logout request failed", "error", err)
		return
	}
	c.authorize(req, s)

	_, hc := c.sessionClient(s.Cookies)
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Warn("logout failed", "error", err)
		return
	}
	drain(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("logout returned error status", "status", resp.StatusCode)
	}
}

// MenuList returns the raw getMenuList body for the session.
func (c *Client) MenuList(ctx context.Context, s Session, languageID int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.MenuTimeout)
	defer cancel()

	u := c.apiBase.String() + "/Menu/getMenuList?languageID=" + strconv.Itoa(languageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build menu request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req, s)

	_, hc := c.sessionClient(s.Cookies)
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("menu list: %w", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: menu list status %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read menu list: %w", err)
	}
	return body, nil
}

// Ping checks that the web panel answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("web panel unreachable: %w", err)
	}
	drain(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// authorize adds a bearer token unless the session is cookie based.
func (c *Client) authorize(req *http.Request, s Session) {
	if s.Token != "" && s.Token != SessionMarker {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
}

// sessionClient returns a copy of the shared client with a fresh jar seeded
// with cookies, so redirects inside one call keep the session.
func (c *Client) sessionClient(cookies []Cookie) (*cookiejar.Jar, *http.Client) {
	jar, _ := cookiejar.New(nil)
	if len(cookies) > 0 {
		hc := make([]*http.Cookie, 0, len(cookies))
		for _, ck := range cookies {
			hc = append(hc, &http.Cookie{Name: ck.Name, Value: ck.Value})
		}
		jar.SetCookies(c.base, hc)
		if c.apiBase.Host != c.base.Host {
			jar.SetCookies(c.apiBase, hc)
		}
	}
	clone := *c.http
	clone.Jar = jar
	return jar, &clone
}

func (c *Client) export(jar *cookiejar.Jar) []Cookie {
	cookies := jar.Cookies(c.base)
	out := make([]Cookie, 0, len(cookies))
	for _, ck := range cookies {
		out = append(out, Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxBodySize))
	_ = body.Close()
}
