package session

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/utils"
)

// Cookie names. CookieDepartment keeps the historical spelling used by deployed clients.
const (
	CookieUserID     = "userId"
	CookieDomain     = "userDomain"
	CookieUserName   = "userName"
	CookieBranchCode = "branchCode"
	CookieBranchName = "branchName"
	CookieRole       = "userRole"
	CookieLevel      = "userLevel"
	CookieDepartment = "userDepartmen"
	CookieProfile    = "userProfile"
	CookieToken      = "userSession"
	CookiePresence   = "userId_client"
)

// CookieNames is every cookie the store has ever written. Clear expires all of them.
var CookieNames = []string{
	CookieUserID,
	CookieDomain,
	CookieUserName,
	CookieBranchCode,
	CookieBranchName,
	CookieRole,
	CookieLevel,
	CookieDepartment,
	CookieProfile,
	CookieToken,
	CookiePresence,
}

var (
	ErrIncomplete = errors.New("session is missing required attributes")
	ErrNoSecret   = errors.New("cookie secret is not configured")
)

const DefaultTTL = 8 * time.Hour

type Options struct {
	Path   string
	Domain string
	Secure bool
	TTL    time.Duration
	Secret string
	Now    func() time.Time
}

// Store keeps the session in one cookie per attribute.
type Store struct {
	opts Options
}

func NewStore(opts Options) *Store {
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{opts: opts}
}

// DefaultStore builds a store from the current configuration.
func DefaultStore() *Store {
	return NewStore(Options{
		Path:   config.AppSetting.CookiePath(),
		Secure: config.ServerSetting.IsRelease(),
		TTL:    config.AppSetting.SessionTTL,
		Secret: config.AppSetting.CookieSecret,
	})
}

// Commit writes every attribute of u. Nothing is written unless u is complete.
func (s *Store) Commit(c *gin.Context, u *User) error {
	if !u.Complete() {
		return ErrIncomplete
	}
	if s.opts.Secret == "" {
		return ErrNoSecret
	}
	token, err := utils.EncryptString(s.opts.Secret, u.Token)
	if err != nil {
		return err
	}
	expires := s.opts.Now().Add(s.opts.TTL)
	presence, err := s.SignPresence(u.UserID, expires)
	if err != nil {
		return err
	}

	values := map[string]string{
		CookieUserID:     u.UserID,
		CookieDomain:     u.Domain,
		CookieUserName:   u.UserName,
		CookieBranchCode: u.BranchCode,
		CookieBranchName: u.BranchName,
		CookieRole:       u.Role,
		CookieLevel:      u.Level,
		CookieDepartment: u.Department,
		CookieProfile:    u.Profile,
		CookieToken:      token,
		CookiePresence:   presence,
	}
	cookies := make([]*http.Cookie, 0, len(CookieNames))
	for _, name := range CookieNames {
		cookies = append(cookies, s.cookie(name, values[name], expires, int(s.opts.TTL/time.Second)))
	}
	for _, ck := range cookies {
		http.SetCookie(c.Writer, ck)
	}
	return nil
}

// Read returns the session carried by the request cookies. A missing identifier, an empty
// required attribute or an undecryptable token all mean no session.
func (s *Store) Read(c *gin.Context) (*User, bool) {
	id := s.value(c, CookieUserID)
	if id == "" {
		return nil, false
	}
	u := &User{
		UserID:     id,
		Domain:     s.value(c, CookieDomain),
		UserName:   s.value(c, CookieUserName),
		BranchCode: s.value(c, CookieBranchCode),
		BranchName: s.value(c, CookieBranchName),
		Role:       s.value(c, CookieRole),
		Level:      s.value(c, CookieLevel),
		Department: s.value(c, CookieDepartment),
		Profile:    s.value(c, CookieProfile),
	}
	sealed := s.value(c, CookieToken)
	if sealed == "" || s.opts.Secret == "" {
		return nil, false
	}
	token, err := utils.DecryptString(s.opts.Secret, sealed)
	if err != nil {
		return nil, false
	}
	u.Token = token
	if !u.Complete() {
		return nil, false
	}
	return u, true
}

// Clear expires every session cookie.
func (s *Store) Clear(c *gin.Context) {
	past := time.Unix(0, 0)
	for _, name := range CookieNames {
		http.SetCookie(c.Writer, s.cookie(name, "", past, -1))
	}
}

func (s *Store) cookie(name, value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   s.opts.Secure,
		HttpOnly: name != CookiePresence,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Store) value(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}
