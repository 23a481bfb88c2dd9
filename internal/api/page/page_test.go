package page_test

import (
	"io/ioutil"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/apitest"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
)

func noFollow(hc *http.Client) *http.Client {
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return hc
}

func get(t *testing.T, hc *http.Client, url string) (*http.Response, string) {
	resp, err := hc.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHomeNeedsSession(t *testing.T) {
	p := apitest.NewPortal(t, apitest.NewBackend(t))

	resp, _ := get(t, noFollow(apitest.NewBrowser()), p.URL+"/home")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, apitest.BasePath+"/signin", resp.Header.Get("Location"))

	resp, body := get(t, noFollow(p.Login(t, "checker")), p.URL+"/home")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Branch Checker")
	assert.Contains(t, body, "Branch Supervisor")
}

func TestHomeCarriesSessionTiming(t *testing.T) {
	p := apitest.NewPortal(t, apitest.NewBackend(t))
	config.SetSessionSetting(config.SessionSettingS{
		IdleTimeout:      7 * time.Minute,
		ValidateInterval: 45 * time.Second,
		ValidateGrace:    2 * time.Second,
		ValidatorMode:    "navigation",
	})

	_, body := get(t, noFollow(p.Login(t, "demo")), p.URL+"/home")
	assert.Contains(t, body, "420")
	assert.Contains(t, body, "45")
	assert.Contains(t, body, `"navigation"`)
	assert.Contains(t, body, "/api/auth/validate")
	assert.Contains(t, body, "sessionInvalidated")
}

func TestSignInPage(t *testing.T) {
	p := apitest.NewPortal(t, apitest.NewBackend(t))

	resp, body := get(t, noFollow(apitest.NewBrowser()), p.URL+"/signin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<form")

	resp, _ = get(t, noFollow(p.Login(t, "demo")), p.URL+"/signin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, apitest.BasePath+"/home", resp.Header.Get("Location"))
}
