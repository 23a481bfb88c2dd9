// Package apitest runs the portal against a stub authentication service for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/entity"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

const (
	BasePath = "/strweb"
	Secret   = "apitest-cookie-secret"
	DSN      = "file:apitest?mode=memory&cache=shared"
)

// Profile is one account known to the stub.
type Profile struct {
	Password string
	User     session.User // Token is ignored; the stub issues one per login
	Menu     []session.MenuItem
}

// DemoMenu is the menu handed out to every default account.
var DemoMenu = []session.MenuItem{{
	Code:  "STR",
	Title: "Suspicious Transactions",
	Children: []session.MenuItem{
		{Code: "STR01", Title: "New report", Path: "/str/entry"},
	},
}}

func demoProfile(id, name, profile string) Profile {
	return Profile{
		Password: "secret",
		User: session.User{
			UserID:     id,
			UserName:   name,
			BranchCode: "0101",
			BranchName: "Head Office",
			Role:       "maker",
			Level:      "1",
			Department: "Operations",
			Profile:    profile,
		},
		Menu: DemoMenu,
	}
}

// Backend is a stub of the external authentication service.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	profiles map[string]Profile
	tokens   map[string]string // token -> user id

	// ValidateStatus, when non zero, is returned by ValidateSession with a body that is
	// not a verdict, the way a gateway answers.
	ValidateStatus int32
	// LoginStatus, when non zero, is returned by Login the same way.
	LoginStatus int32
	// ValidateDelay holds ValidateSession replies back.
	ValidateDelay int64

	LoginCalls    int32
	ValidateCalls int32
	LogoutCalls   int32
}

// NewBackend starts a stub with the accounts demo (OPR), checker (SPV), compliance (CMP)
// and admin (ADM), all with password "secret".
func NewBackend(t testing.TB) *Backend {
	b := &Backend{
		profiles: map[string]Profile{
			"demo":       demoProfile("demo", "Demo Operator", "OPR"),
			"checker":    demoProfile("checker", "Branch Checker", "SPV"),
			"compliance": demoProfile("compliance", "Compliance Desk", "CMP"),
			"admin":      demoProfile("admin", "Portal Admin", "ADM"),
		},
		tokens: make(map[string]string),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/Login", b.login)
	mux.HandleFunc("/api/Auth/ValidateSession", b.validate)
	mux.HandleFunc("/api/Auth/Logout", b.logout)
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// AddProfile registers or replaces an account.
func (b *Backend) AddProfile(p Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[p.User.UserID] = p
}

// Revoke invalidates every token of userID, as a login elsewhere would.
func (b *Backend) Revoke(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for tok, id := range b.tokens {
		if id == userID {
			delete(b.tokens, tok)
		}
	}
}

// LiveTokens counts the tokens the stub still accepts.
func (b *Backend) LiveTokens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tokens)
}

func (b *Backend) SetValidateStatus(code int) { atomic.StoreInt32(&b.ValidateStatus, int32(code)) }

func (b *Backend) SetLoginStatus(code int) { atomic.StoreInt32(&b.LoginStatus, int32(code)) }

func (b *Backend) SetValidateDelay(d time.Duration) { atomic.StoreInt64(&b.ValidateDelay, int64(d)) }

func decode(r *http.Request) map[string]string {
	body := map[string]string{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body
}

func reply(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&b.LoginCalls, 1)
	body := decode(r)
	if code := atomic.LoadInt32(&b.LoginStatus); code != 0 {
		reply(w, int(code), map[string]string{"status": "Failed", "message": http.StatusText(int(code))})
		return
	}

	b.mu.Lock()
	p, ok := b.profiles[body["userid"]]
	if !ok || p.Password != body["password"] {
		b.mu.Unlock()
		reply(w, http.StatusUnauthorized, map[string]string{
			"status":  "Failed",
			"message": "Invalid credentials",
			"detail":  "user id or password is wrong",
		})
		return
	}
	token := "tok-" + uuid.NewString()
	b.tokens[token] = p.User.UserID
	b.mu.Unlock()

	u := p.User
	reply(w, http.StatusOK, map[string]interface{}{
		"status":  "Success",
		"message": "Login successful",
		"data": map[string]interface{}{
			"userId":     u.UserID,
			"userName":   u.UserName,
			"domain":     u.Domain,
			"branchCode": u.BranchCode,
			"branchName": u.BranchName,
			"role":       u.Role,
			"level":      u.Level,
			"department": u.Department,
			"profile":    u.Profile,
			"sessionId":  token,
			"userMenu":   p.Menu,
		},
	})
}

func (b *Backend) validate(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&b.ValidateCalls, 1)
	body := decode(r)

	if d := time.Duration(atomic.LoadInt64(&b.ValidateDelay)); d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
	}
	if code := atomic.LoadInt32(&b.ValidateStatus); code != 0 {
		reply(w, int(code), map[string]string{"title": http.StatusText(int(code))})
		return
	}

	b.mu.Lock()
	id, ok := b.tokens[body["sessionId"]]
	b.mu.Unlock()
	if !ok || id != body["userid"] {
		reply(w, http.StatusUnauthorized, map[string]interface{}{"valid": false, "message": "Session expired"})
		return
	}
	reply(w, http.StatusOK, map[string]interface{}{"valid": true, "message": "Session active"})
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&b.LogoutCalls, 1)
	body := decode(r)
	b.mu.Lock()
	delete(b.tokens, body["sessionId"])
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// Portal is the real router served over httptest, wired to a Backend.
type Portal struct {
	Server  *httptest.Server
	Backend *Backend
	// URL includes the base path.
	URL string
}

// NewPortal points the global configuration at b and serves the portal routes.
// The previous configuration is restored when the test ends.
func NewPortal(t testing.TB, b *Backend) *Portal {
	gin.SetMode(gin.TestMode)

	server, app, ext := *config.ServerSetting, *config.AppSetting, *config.ExtServerSetting
	sess := config.GetSessionSetting()
	t.Cleanup(func() {
		*config.ServerSetting, *config.AppSetting, *config.ExtServerSetting = server, app, ext
		config.SetSessionSetting(sess)
	})

	config.ServerSetting.RunMode = "debug"
	config.AppSetting.BasePath = BasePath
	config.AppSetting.CookieSecret = Secret
	config.AppSetting.DbSavePath = DSN
	config.AppSetting.LoginRate = 100
	config.AppSetting.LoginBurst = 100
	config.ExtServerSetting.AuthBaseURL = b.Server.URL
	config.ExtServerSetting.ValidateTimeout = 2 * time.Second

	if err := entity.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	engine := gin.New()
	api.LoadModules(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return &Portal{Server: srv, Backend: b, URL: srv.URL + BasePath}
}

// NewBrowser returns an HTTP client with its own cookie jar.
func NewBrowser() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar}
}

// Do sends a JSON request to path (relative to the base path) and decodes the JSON reply.
func (p *Portal) Do(t testing.TB, hc *http.Client, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, p.URL+path, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := hc.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// Login signs userID in with the stub password and fails the test otherwise.
func (p *Portal) Login(t testing.TB, userID string) *http.Client {
	t.Helper()
	hc := NewBrowser()
	resp, body := p.Do(t, hc, http.MethodPost, "/api/auth/login", map[string]string{"userid": userID, "password": "secret"})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("login %s: http %d %v", userID, resp.StatusCode, body)
	}
	return hc
}
