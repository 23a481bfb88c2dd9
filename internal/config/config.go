package config

import (
	"os"
	"sync"
	"time"

	"gitlab.yctc.tech/zhiting/strportal.git/pkg/logger"
)

var (
	ServerSetting    = &ServerSettingS{RunMode: "debug", HttpPort: "8000", ReadTimeout: 60 * time.Second, WriteTimeout: 60 * time.Second}
	AppSetting       = &AppSettingS{BasePath: "", DefaultPageSize: 20, MaxPageSize: 100, DbSavePath: "strportal.db", SessionTTL: 8 * time.Hour}
	ExtServerSetting = &ExtServerSettingS{LoginTimeout: 15 * time.Second, ValidateTimeout: 8 * time.Second}
	SessionSetting   = &SessionSettingS{IdleTimeout: 15 * time.Minute, ValidateInterval: 30 * time.Second, ValidateGrace: 5 * time.Second, ValidatorMode: "interval"}
	Logger           = logger.NewLogger(os.Stderr, "", 0)
)

// ServerSettingS HTTP server settings
type ServerSettingS struct {
	RunMode      string
	HttpPort     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// IsRelease reports whether cookies must be marked Secure.
func (s *ServerSettingS) IsRelease() bool {
	return s.RunMode == "release"
}

// AppSettingS application settings
type AppSettingS struct {
	BasePath        string        // prefix of every route and the cookie path
	DefaultPageSize int           // default page size
	MaxPageSize     int           // max page size
	LogSavePath     string        // log directory
	LogFileName     string        // log file name
	LogFileExt      string        // log file extension
	LogLevel        string        // debug | info | warn | error
	DbSavePath      string        // sqlite file
	CookieSecret    string        // encrypts the session token cookie and signs the presence token
	SessionTTL      time.Duration // absolute cookie lifetime
	LoginRate       float64       // login attempts per second per client ip
	LoginBurst      int
}

// CookiePath is the path every session cookie is scoped to.
func (a *AppSettingS) CookiePath() string {
	if a.BasePath == "" {
		return "/"
	}
	return a.BasePath
}

// ExtServerSettingS external authentication backend
type ExtServerSettingS struct {
	AuthBaseURL     string // e.g. https://auth.branch.local
	LoginTimeout    time.Duration
	ValidateTimeout time.Duration
}

// SessionSettingS client-side session timing, overridable from the setting table
type SessionSettingS struct {
	IdleTimeout      time.Duration
	ValidateInterval time.Duration
	ValidateGrace    time.Duration
	ValidatorMode    string // interval | navigation | both
}

var sessionMu sync.RWMutex

// GetSessionSetting returns a copy of the current session timing.
func GetSessionSetting() SessionSettingS {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return *SessionSetting
}

// SetSessionSetting replaces the session timing while the server is running.
func SetSessionSetting(s SessionSettingS) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	*SessionSetting = s
}
