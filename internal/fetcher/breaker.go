package fetcher

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrHostUnavailable is returned without a request when a host has failed
// too many downloads in a row.
var ErrHostUnavailable = eris.New("host unavailable")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// hostBreaker stops requests to one host after threshold consecutive
// failed downloads. After reset it lets a single probe through; the probe's
// outcome closes or reopens it.
type hostBreaker struct {
	host      string
	threshold int
	reset     time.Duration

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
	probing  bool

	now func() time.Time
}

func (b *hostBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerOpen:
		if b.now().Sub(b.openedAt) < b.reset {
			return eris.Wrapf(ErrHostUnavailable, "fetcher: %s", b.host)
		}
		b.transition(breakerHalfOpen)
		b.probing = true
		return nil
	case breakerHalfOpen:
		if b.probing {
			return eris.Wrapf(ErrHostUnavailable, "fetcher: %s (probe in flight)", b.host)
		}
		b.probing = true
	}
	return nil
}

func (b *hostBreaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if !failed {
		b.failures = 0
		if b.state != breakerClosed {
			b.transition(breakerClosed)
		}
		return
	}

	b.failures++
	if b.state == breakerHalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		if b.state != breakerOpen {
			b.transition(breakerOpen)
		}
	}
}

// release ends a probe without judging the host.
func (b *hostBreaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

func (b *hostBreaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *hostBreaker) transition(to breakerState) {
	zap.L().Info("fetcher: host breaker",
		zap.String("host", b.host),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}

// breakers holds one hostBreaker per host.
type breakers struct {
	threshold int
	reset     time.Duration
	now       func() time.Time

	mu    sync.Mutex
	hosts map[string]*hostBreaker
}

func newBreakers(threshold int, reset time.Duration) *breakers {
	return &breakers{threshold: threshold, reset: reset, now: time.Now, hosts: make(map[string]*hostBreaker)}
}

func (bs *breakers) get(host string) *hostBreaker {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	b, ok := bs.hosts[host]
	if !ok {
		b = &hostBreaker{host: host, threshold: bs.threshold, reset: bs.reset, now: bs.now}
		bs.hosts[host] = b
	}
	return b
}
