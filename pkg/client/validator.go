package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

type State int32

const (
	StateIdle State = iota
	StateValidating
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRedirecting:
		return "redirecting"
	}
	return "unknown"
}

// Outcome of one validation round.
type Outcome int

const (
	OutcomeValid     Outcome = iota
	OutcomeInvalid           // session gone, forced logout started
	OutcomeSkipped           // another round in flight or already redirecting
	OutcomeTransient         // could not tell; the session is kept
)

const DefaultValidateTimeout = 8 * time.Second

type ValidatorOptions struct {
	Mode     string        // interval | navigation | both
	Interval time.Duration // between rounds in interval mode
	Grace    time.Duration // before the first round
	Timeout  time.Duration // per request
	Clock    Clock
}

// Validator checks with the server that the session is still live and forces a logout
// the first time it is not. One instance per page.
type Validator struct {
	client *Client
	opts   ValidatorOptions

	mu        sync.Mutex
	state     State
	lastRoute string
}

func NewValidator(c *Client, opts ValidatorOptions) *Validator {
	if opts.Mode == "" {
		opts.Mode = types.ValidatorInterval
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Grace < 0 {
		opts.Grace = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultValidateTimeout
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	return &Validator{client: c, opts: opts}
}

func (v *Validator) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Check runs one validation round unless one is already running.
func (v *Validator) Check(ctx context.Context) Outcome {
	v.mu.Lock()
	if v.state != StateIdle {
		v.mu.Unlock()
		return OutcomeSkipped
	}
	v.state = StateValidating
	v.mu.Unlock()

	outcome := v.validate(ctx)
	if outcome == OutcomeInvalid {
		v.ForceLogout()
		return outcome
	}
	v.mu.Lock()
	if v.state == StateValidating {
		v.state = StateIdle
	}
	v.mu.Unlock()
	return outcome
}

func (v *Validator) validate(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, v.opts.Timeout)
	defer cancel()

	log := v.client.log
	code, raw, err := v.client.do(ctx, http.MethodGet, "/api/auth/validate", nil)
	if err != nil {
		log.Warnf("validate session: %v", err)
		return OutcomeTransient
	}
	if code == http.StatusUnauthorized {
		return OutcomeInvalid
	}
	if code < 200 || code > 299 {
		log.Warnf("validate session: http %d", code)
		return OutcomeTransient
	}
	var reply struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	if err = json.Unmarshal(raw, &reply); err != nil {
		log.Warnf("validate session: decode: %v", err)
		return OutcomeTransient
	}
	if !reply.Valid {
		return OutcomeInvalid
	}
	return OutcomeValid
}

// ForceLogout clears client state and leaves for sign-in. Only the first call does anything.
func (v *Validator) ForceLogout() {
	v.mu.Lock()
	if v.state == StateRedirecting {
		v.mu.Unlock()
		return
	}
	v.state = StateRedirecting
	v.mu.Unlock()

	v.client.log.Warn("session invalidated, redirecting to sign-in")
	v.client.forceLogout()
}

// OnNavigate validates once per route change.
func (v *Validator) OnNavigate(ctx context.Context, route string) Outcome {
	v.mu.Lock()
	if route == v.lastRoute {
		v.mu.Unlock()
		return OutcomeSkipped
	}
	v.lastRoute = route
	v.mu.Unlock()
	return v.Check(ctx)
}

// RunInterval validates after the grace delay and then every interval until ctx is done
// or a logout was forced.
func (v *Validator) RunInterval(ctx context.Context) {
	wait := v.opts.Grace
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.opts.Clock.After(wait):
		}
		v.Check(ctx)
		if v.State() == StateRedirecting {
			return
		}
		wait = v.opts.Interval
	}
}

// Start begins the configured mode. Navigation mode needs OnNavigate calls from the router.
func (v *Validator) Start(ctx context.Context) {
	switch v.opts.Mode {
	case types.ValidatorNavigation:
		return
	case types.ValidatorBoth:
		v.client.log.Warn("session validator runs in both interval and navigation mode")
	case types.ValidatorInterval:
	default:
		v.client.log.Warnf("unknown validator mode %q, using interval", v.opts.Mode)
	}
	go v.RunInterval(ctx)
}
