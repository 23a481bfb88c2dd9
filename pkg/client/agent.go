package client

import (
	"context"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

// Agent runs the session monitors of a signed-in client with the timings configured on
// the server.
type Agent struct {
	client    *Client
	timing    Timing
	validator *Validator
	idle      *IdleMonitor
}

// NewAgent fetches the timings and builds the validator and the idle monitor. A nil clock
// means real time.
func (c *Client) NewAgent(ctx context.Context, clock Clock) (*Agent, error) {
	timing, err := c.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Agent{
		client: c,
		timing: *timing,
		validator: NewValidator(c, ValidatorOptions{
			Mode:     timing.ValidatorMode,
			Interval: timing.ValidateInterval,
			Grace:    timing.ValidateGrace,
			Clock:    clock,
		}),
		idle: c.IdleMonitor(IdleOptions{
			Timeout:     timing.IdleTimeout,
			NoticeDelay: DefaultNoticeDelay,
			Clock:       clock,
		}),
	}, nil
}

func (a *Agent) Timing() Timing { return a.timing }

func (a *Agent) Validator() *Validator { return a.validator }

// Start arms the idle timer and starts validation in the configured mode.
func (a *Agent) Start(ctx context.Context) {
	a.idle.Start()
	a.validator.Start(ctx)
}

// Touch reports a user event to the idle monitor.
func (a *Agent) Touch(event string) {
	a.idle.Touch(event)
}

// Navigate records a route change. It counts as activity and, in navigation mode,
// triggers one validation.
func (a *Agent) Navigate(ctx context.Context, route string) Outcome {
	a.idle.Touch("click")
	switch a.timing.ValidatorMode {
	case types.ValidatorNavigation, types.ValidatorBoth:
		return a.validator.OnNavigate(ctx, route)
	}
	return OutcomeSkipped
}

// Stop cancels the idle timer. The interval loop ends with the context given to Start.
func (a *Agent) Stop() {
	a.idle.Stop()
}
