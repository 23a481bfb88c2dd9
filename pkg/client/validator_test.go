package client_test

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.yctc.tech/zhiting/strportal.git/pkg/client"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/logger"
)

// stubValidate serves only the validate endpoint with the given handler.
func stubValidate(t *testing.T, h http.HandlerFunc) (*client.Client, *navRecorder) {
	mux := http.NewServeMux()
	mux.HandleFunc("/strweb/api/auth/validate", h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	nav := &navRecorder{}
	c, err := client.New(client.Options{
		BaseURL:   srv.URL + "/strweb",
		Navigator: nav,
		Logger:    logger.NewLogger(ioutil.Discard, "", 0),
	})
	require.NoError(t, err)
	return c, nav
}

func replyWith(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(body))
	}
}

func TestCheckOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    client.Outcome
	}{
		{"valid", replyWith(http.StatusOK, `{"valid":true,"message":"ok"}`), client.OutcomeValid},
		{"unauthorized", replyWith(http.StatusUnauthorized, `{"valid":false}`), client.OutcomeInvalid},
		{"valid false", replyWith(http.StatusOK, `{"valid":false,"message":"expired"}`), client.OutcomeInvalid},
		{"request timeout", replyWith(http.StatusRequestTimeout, `{"valid":false}`), client.OutcomeTransient},
		{"bad gateway", replyWith(http.StatusBadGateway, `{"valid":false}`), client.OutcomeTransient},
		{"server error", replyWith(http.StatusInternalServerError, ``), client.OutcomeTransient},
		{"not json", replyWith(http.StatusOK, `<html>`), client.OutcomeTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, nav := stubValidate(t, tc.handler)
			v := client.NewValidator(c, client.ValidatorOptions{})

			assert.Equal(t, tc.want, v.Check(context.Background()))
			if tc.want == client.OutcomeInvalid {
				assert.Equal(t, client.StateRedirecting, v.State())
				assert.Equal(t, []string{"/signin"}, nav.Paths())
				assert.True(t, c.ConsumeSignInFlags().SessionInvalidated)
			} else {
				assert.Equal(t, client.StateIdle, v.State())
				assert.Empty(t, nav.Paths())
			}
		})
	}
}

func TestCheckTimeoutIsNonFatal(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c, nav := stubValidate(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	v := client.NewValidator(c, client.ValidatorOptions{Timeout: 50 * time.Millisecond})

	assert.Equal(t, client.OutcomeTransient, v.Check(context.Background()))
	assert.Equal(t, client.StateIdle, v.State())
	assert.Empty(t, nav.Paths())
}

func TestCheckNetworkErrorIsNonFatal(t *testing.T) {
	nav := &navRecorder{}
	// nothing listens on the discard port
	c, err := client.New(client.Options{
		BaseURL:   "http://127.0.0.1:9/strweb",
		Navigator: nav,
		Logger:    logger.NewLogger(ioutil.Discard, "", 0),
	})
	require.NoError(t, err)
	v := client.NewValidator(c, client.ValidatorOptions{Timeout: time.Second})

	assert.Equal(t, client.OutcomeTransient, v.Check(context.Background()))
	assert.Equal(t, client.StateIdle, v.State())
	assert.Empty(t, nav.Paths())
}

func TestCheckSkippedWhileValidating(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	c, _ := stubValidate(t, func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		replyWith(http.StatusOK, `{"valid":true}`)(w, r)
	})
	v := client.NewValidator(c, client.ValidatorOptions{})

	done := make(chan client.Outcome)
	go func() { done <- v.Check(context.Background()) }()
	<-entered

	assert.Equal(t, client.StateValidating, v.State())
	assert.Equal(t, client.OutcomeSkipped, v.Check(context.Background()))

	close(release)
	assert.Equal(t, client.OutcomeValid, <-done)
	assert.Equal(t, client.StateIdle, v.State())
}

func TestForceLogoutIsIdempotent(t *testing.T) {
	var calls int32
	c, nav := stubValidate(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		replyWith(http.StatusUnauthorized, `{"valid":false}`)(w, r)
	})
	v := client.NewValidator(c, client.ValidatorOptions{})

	assert.Equal(t, client.OutcomeInvalid, v.Check(context.Background()))
	v.ForceLogout()
	assert.Equal(t, client.OutcomeSkipped, v.Check(context.Background()))

	assert.Equal(t, []string{"/signin"}, nav.Paths())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestOnNavigateOncePerRoute(t *testing.T) {
	var calls int32
	c, _ := stubValidate(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		replyWith(http.StatusOK, `{"valid":true}`)(w, r)
	})
	v := client.NewValidator(c, client.ValidatorOptions{Mode: "navigation"})
	ctx := context.Background()

	assert.Equal(t, client.OutcomeValid, v.OnNavigate(ctx, "/home"))
	assert.Equal(t, client.OutcomeSkipped, v.OnNavigate(ctx, "/home"))
	assert.Equal(t, client.OutcomeValid, v.OnNavigate(ctx, "/str/entry"))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRunIntervalAgainstPortal(t *testing.T) {
	f := newFixture(t)
	f.login(t, "demo")
	backend := f.portal.Backend

	clock := newManualClock()
	v := client.NewValidator(f.client, client.ValidatorOptions{
		Interval: 30 * time.Second,
		Grace:    5 * time.Second,
		Clock:    clock,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopped := make(chan struct{})
	go func() {
		v.RunInterval(ctx)
		close(stopped)
	}()

	waitPending := func() {
		require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)
	}

	waitPending()
	clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&backend.ValidateCalls) == 1 }, time.Second, time.Millisecond)

	waitPending()
	clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&backend.ValidateCalls) == 2 }, time.Second, time.Millisecond)
	assert.Empty(t, f.nav.Paths())

	// a login elsewhere kills the token
	backend.Revoke("demo")
	waitPending()
	clock.Advance(30 * time.Second)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("validator kept running after the session was invalidated")
	}
	assert.Equal(t, client.StateRedirecting, v.State())
	assert.Equal(t, []string{"/signin"}, f.nav.Paths())
	assert.Nil(t, f.client.GetSession(context.Background()), "server cleared the cookies")
	assert.True(t, f.client.ConsumeSignInFlags().SessionInvalidated)
}

func TestRunIntervalBackendDownKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.login(t, "demo")
	f.portal.Backend.SetValidateStatus(http.StatusServiceUnavailable)

	clock := newManualClock()
	v := client.NewValidator(f.client, client.ValidatorOptions{Interval: time.Minute, Clock: clock})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		v.RunInterval(ctx)
		close(stopped)
	}()

	for i := 1; i <= 3; i++ {
		require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)
		clock.Advance(time.Minute)
		n := int32(i)
		require.Eventually(t, func() bool { return atomic.LoadInt32(&f.portal.Backend.ValidateCalls) == n }, time.Second, time.Millisecond)
	}
	cancel()
	<-stopped

	assert.Empty(t, f.nav.Paths())
	assert.NotNil(t, f.client.GetSession(context.Background()))
}

func TestCheckAgainstPortalTimeout(t *testing.T) {
	f := newFixture(t)
	f.login(t, "demo")
	f.portal.Backend.SetValidateDelay(time.Second)

	v := client.NewValidator(f.client, client.ValidatorOptions{Timeout: 100 * time.Millisecond})
	assert.Equal(t, client.OutcomeTransient, v.Check(context.Background()))
	assert.NotNil(t, f.client.GetSession(context.Background()))
}
