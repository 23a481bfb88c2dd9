// Package client is the browser side of the session lifecycle: it reads the session,
// validates it, watches for inactivity and logs out, against the portal's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/logger"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

type Options struct {
	BaseURL    string       // portal root including the base path, e.g. https://str.bank.local/strweb
	HTTPClient *http.Client // a cookie jar is attached when missing
	Local      Storage      // survives restarts; holds the menu
	Session    Storage      // per tab; holds the one-shot flags
	Navigator  Navigator
	Logger     *logger.Logger
}

type Client struct {
	base    *url.URL
	http    *http.Client
	local   Storage
	session Storage
	nav     Navigator
	log     *logger.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		withJar := *hc
		withJar.Jar = jar
		hc = &withJar
	}
	c := &Client{
		base:    base,
		http:    hc,
		local:   opts.Local,
		session: opts.Session,
		nav:     opts.Navigator,
		log:     opts.Logger,
	}
	if c.local == nil {
		c.local = NewMemStorage()
	}
	if c.session == nil {
		c.session = NewMemStorage()
	}
	if c.nav == nil {
		c.nav = NavigatorFunc(func(string) {})
	}
	if c.log == nil {
		c.log = logger.NewLogger(os.Stderr, "", 0)
	}
	return c, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// do sends a credentialed request and returns the status code and raw body.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrapf(err, "read %s", path)
	}
	return resp.StatusCode, raw, nil
}

type LoginResult struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	Detail   string             `json:"detail"`
	UserMenu []session.MenuItem `json:"userMenu"`
	Redirect string             `json:"redirect"`
}

// Login posts the credentials. On success the cookies land in the jar and the menu is
// kept in local storage; the caller navigates to Redirect.
func (c *Client) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	code, raw, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"userid":   userID,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	result := &LoginResult{}
	if err = json.Unmarshal(raw, result); err != nil {
		return nil, errors.Wrapf(err, "login reply (http %d)", code)
	}
	if !result.Success {
		c.log.Warnf("login %s rejected: %s", userID, result.Message)
		return result, nil
	}
	menu, err := json.Marshal(result.UserMenu)
	if err == nil {
		err = c.local.Set(KeyUserMenu, string(menu))
	}
	if err != nil {
		c.log.Warnf("store menu: %v", err)
	}
	return result, nil
}

// Menu returns the menu stored at login.
func (c *Client) Menu() []session.MenuItem {
	raw, ok := c.local.Get(KeyUserMenu)
	if !ok {
		return nil
	}
	var menu []session.MenuItem
	if err := json.Unmarshal([]byte(raw), &menu); err != nil {
		return nil
	}
	return menu
}

type SessionInfo struct {
	session.User
	ProfileLabel string `json:"profileLabel"`
	IsLocal      bool   `json:"isLocal"`
}

// GetSession asks the server for the current session every time. Any failure is logged
// and reported as no session.
func (c *Client) GetSession(ctx context.Context) *SessionInfo {
	code, raw, err := c.do(ctx, http.MethodGet, "/api/auth/session", nil)
	if err != nil {
		c.log.Errorf("get session: %v", err)
		return nil
	}
	if code < 200 || code > 299 {
		c.log.Warnf("get session: http %d", code)
		return nil
	}
	var reply struct {
		Success bool         `json:"success"`
		Data    *SessionInfo `json:"data"`
	}
	if err = json.Unmarshal(raw, &reply); err != nil {
		c.log.Errorf("get session: decode: %v", err)
		return nil
	}
	if !reply.Success || reply.Data == nil {
		c.log.Warn("get session: no session in reply")
		return nil
	}
	return reply.Data
}

// PresenceID is the user id carried by the presence cookie, or "" when there is none.
// It only tags the client's identity and proves nothing.
func (c *Client) PresenceID() string {
	if c.http.Jar == nil {
		return ""
	}
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name != session.CookiePresence {
			continue
		}
		v, err := url.QueryUnescape(ck.Value)
		if err != nil {
			v = ck.Value
		}
		id, err := session.ParsePresence(v)
		if err != nil {
			c.log.Debugf("presence cookie: %v", err)
			return ""
		}
		return id
	}
	return ""
}

// Logout ends the session and leaves for the sign-in page. A transport error is returned
// with local state untouched so the user can retry.
func (c *Client) Logout(ctx context.Context) error {
	return c.logout(ctx, "")
}

// ExpireSession is the idle logout. Unlike Logout it always finishes: when the server
// cannot be reached the cookies are dropped from the jar locally.
func (c *Client) ExpireSession(ctx context.Context) {
	if err := c.logout(ctx, "idle"); err != nil {
		c.log.Warnf("idle logout: %v", err)
		c.dropCookies()
		c.resetState(KeyJustLoggedOut)
		c.nav.Navigate(types.SignInPath)
	}
}

func (c *Client) logout(ctx context.Context, reason string) error {
	var payload interface{}
	if reason != "" {
		payload = map[string]string{"reason": reason}
	}
	code, _, err := c.do(ctx, http.MethodPost, "/api/auth/logout", payload)
	if err != nil {
		return err
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("logout: http %d", code)
	}
	c.resetState(KeyJustLoggedOut)
	c.nav.Navigate(types.SignInPath)
	return nil
}

// resetState clears what the client holds and leaves one flag for the sign-in page.
func (c *Client) resetState(flag string) {
	if err := c.local.Remove(KeyUserMenu); err != nil {
		c.log.Warnf("clear menu: %v", err)
	}
	if err := c.session.Clear(); err != nil {
		c.log.Warnf("clear session storage: %v", err)
	}
	if err := c.session.Set(flag, "1"); err != nil {
		c.log.Warnf("set %s: %v", flag, err)
	}
}

func (c *Client) dropCookies() {
	if c.http.Jar == nil {
		return
	}
	expired := make([]*http.Cookie, 0, len(session.CookieNames))
	for _, name := range session.CookieNames {
		expired = append(expired, &http.Cookie{Name: name, Path: c.cookiePath(), MaxAge: -1})
	}
	c.http.Jar.SetCookies(c.base, expired)
}

func (c *Client) cookiePath() string {
	if c.base.Path == "" {
		return "/"
	}
	return c.base.Path
}

// forceLogout is the reaction to a session the server reports as invalid.
func (c *Client) forceLogout() {
	c.resetState(KeySessionInvalidated)
	c.nav.Navigate(types.SignInPath)
}

type SignInFlags struct {
	JustLoggedOut      bool
	SessionInvalidated bool
}

// ConsumeSignInFlags reads and deletes the one-shot flags the sign-in page reacts to.
func (c *Client) ConsumeSignInFlags() SignInFlags {
	_, out := Take(c.session, KeyJustLoggedOut)
	_, invalid := Take(c.session, KeySessionInvalidated)
	return SignInFlags{JustLoggedOut: out, SessionInvalidated: invalid}
}

type Timing struct {
	IdleTimeout      time.Duration
	ValidateInterval time.Duration
	ValidateGrace    time.Duration
	ValidatorMode    string
}

// Settings fetches the monitor timings configured on the server.
func (c *Client) Settings(ctx context.Context) (*Timing, error) {
	code, raw, err := c.do(ctx, http.MethodGet, "/api/settings/session", nil)
	if err != nil {
		return nil, err
	}
	var reply struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			IdleTimeoutSeconds      int64  `json:"idle_timeout_seconds"`
			ValidateIntervalSeconds int64  `json:"validate_interval_seconds"`
			ValidateGraceSeconds    int64  `json:"validate_grace_seconds"`
			ValidatorMode           string `json:"validator_mode"`
		} `json:"data"`
	}
	if err = json.Unmarshal(raw, &reply); err != nil {
		return nil, errors.Wrapf(err, "settings reply (http %d)", code)
	}
	if !reply.Success {
		return nil, fmt.Errorf("settings: http %d: %s", code, reply.Message)
	}
	return &Timing{
		IdleTimeout:      time.Duration(reply.Data.IdleTimeoutSeconds) * time.Second,
		ValidateInterval: time.Duration(reply.Data.ValidateIntervalSeconds) * time.Second,
		ValidateGrace:    time.Duration(reply.Data.ValidateGraceSeconds) * time.Second,
		ValidatorMode:    reply.Data.ValidatorMode,
	}, nil
}
