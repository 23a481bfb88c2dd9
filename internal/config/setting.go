package config

import (
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "STR"

func NewSetting(configPaths ...string) (*Setting, error) {
	vp := viper.New()
	vp.SetConfigName("app")
	vp.AddConfigPath("./")
	vp.AddConfigPath("configs/")
	for _, p := range configPaths {
		if p != "" {
			vp.AddConfigPath(p)
		}
	}
	vp.SetConfigType("yaml")
	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	err := vp.ReadInConfig()
	if err != nil {
		return nil, err
	}

	return &Setting{vp: vp}, nil
}

type Setting struct {
	vp *viper.Viper
}

func (s *Setting) ReadSection(k string, v interface{}) error {
	err := s.vp.UnmarshalKey(k, v)
	if err != nil {
		return err
	}

	return nil
}

// Load reads every section into the package-level settings.
// Durations in app.yaml use time.ParseDuration syntax ("60s", "15m", "8h").
// The backend url and cookie secret can also come from STR_EXTSERVER_AUTHBASEURL and
// STR_APP_COOKIESECRET.
func (s *Setting) Load() error {
	sections := map[string]interface{}{
		"Server":    ServerSetting,
		"App":       AppSetting,
		"ExtServer": ExtServerSetting,
		"Session":   SessionSetting,
	}
	for k, v := range sections {
		if !s.vp.IsSet(k) {
			continue
		}
		if err := s.ReadSection(k, v); err != nil {
			return err
		}
	}
	if s.vp.IsSet("ExtServer.AuthBaseURL") {
		ExtServerSetting.AuthBaseURL = s.vp.GetString("ExtServer.AuthBaseURL")
	}
	if s.vp.IsSet("App.CookieSecret") {
		AppSetting.CookieSecret = s.vp.GetString("App.CookieSecret")
	}
	return nil
}
