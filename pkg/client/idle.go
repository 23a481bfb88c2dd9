package client

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultIdleTimeout = 15 * time.Minute
	DefaultNoticeDelay = 3 * time.Second
)

// ActivityEvents are the user events that count as activity.
var ActivityEvents = map[string]bool{
	"mousemove":  true,
	"keydown":    true,
	"click":      true,
	"scroll":     true,
	"touchstart": true,
}

type IdleOptions struct {
	Timeout     time.Duration
	NoticeDelay time.Duration // between the notice and OnIdle
	Clock       Clock
	OnNotice    func()
	OnIdle      func()
}

// IdleMonitor fires OnIdle after Timeout without activity. It runs at most once per Start.
type IdleMonitor struct {
	opts IdleOptions

	mu      sync.Mutex
	running bool
	expired bool
	gen     uint64
	timer   Timer
	notice  Timer
}

func NewIdleMonitor(opts IdleOptions) *IdleMonitor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultIdleTimeout
	}
	if opts.NoticeDelay < 0 {
		opts.NoticeDelay = 0
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	return &IdleMonitor{opts: opts}
}

// IdleMonitor returns a monitor whose expiry logs the client out.
func (c *Client) IdleMonitor(opts IdleOptions) *IdleMonitor {
	if opts.OnIdle == nil {
		opts.OnIdle = func() {
			ctx, cancel := context.WithTimeout(context.Background(), DefaultValidateTimeout)
			defer cancel()
			c.ExpireSession(ctx)
		}
	}
	if opts.OnNotice == nil {
		opts.OnNotice = func() {
			c.log.Info("session expired due to inactivity")
		}
	}
	return NewIdleMonitor(opts)
}

func (m *IdleMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.expired = false
	m.arm()
}

// Touch records a user event; non-activity events are ignored.
func (m *IdleMonitor) Touch(event string) {
	if !ActivityEvents[event] {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || m.expired {
		return
	}
	m.arm()
}

func (m *IdleMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.notice != nil {
		m.notice.Stop()
		m.notice = nil
	}
}

func (m *IdleMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// arm must be called with mu held.
func (m *IdleMonitor) arm() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.timer = m.opts.Clock.AfterFunc(m.opts.Timeout, func() { m.expire(gen) })
}

func (m *IdleMonitor) expire(gen uint64) {
	m.mu.Lock()
	if !m.running || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.expired = true
	m.timer = nil
	m.notice = m.opts.Clock.AfterFunc(m.opts.NoticeDelay, func() { m.fire(gen) })
	m.mu.Unlock()

	if m.opts.OnNotice != nil {
		m.opts.OnNotice()
	}
}

func (m *IdleMonitor) fire(gen uint64) {
	m.mu.Lock()
	if !m.running || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.notice = nil
	m.mu.Unlock()

	if m.opts.OnIdle != nil {
		m.opts.OnIdle()
	}
}
