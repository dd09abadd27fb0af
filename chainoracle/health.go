package chainoracle

import (
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/Cyrix126/bch-xmr-swap/swaperrors"
)

var (
	errUnhealthy = swaperrors.OracleUnavailable("mock oracle marked unhealthy")
	log          = logging.Logger("chainoracle")
)

// MaxBackoff is the ceiling spec.md §7 places on OracleUnavailable retry
// backoff.
const MaxBackoff = 60 * time.Second

// Prober polls an oracle's Health method and tracks exponential backoff,
// capped at MaxBackoff, across consecutive failures. The fsm package does
// not consult it, and nothing sets the machines' Paused overlay from it.
type Prober struct {
	health func() error

	failures int
	lastTry  time.Time
}

// NewProber wraps a health check function (typically oracle.Health).
func NewProber(health func() error) *Prober {
	return &Prober{health: health}
}

// Check runs the health probe if the backoff interval has elapsed,
// updating the failure count, and reports the current health.
func (p *Prober) Check(now time.Time) error {
	if p.failures > 0 && now.Sub(p.lastTry) < p.backoff() {
		return swaperrors.OracleUnavailable("backing off, retry at %s", p.lastTry.Add(p.backoff()))
	}

	p.lastTry = now
	if err := p.health(); err != nil {
		p.failures++
		log.Warnf("oracle health check failed (%d consecutive): %s", p.failures, err)
		return swaperrors.OracleUnavailable("oracle health check failed: %s", err)
	}

	if p.failures > 0 {
		log.Infof("oracle health check recovered after %d failures", p.failures)
	}
	p.failures = 0
	return nil
}

// Failing reports whether the most recent Check observed a failure.
func (p *Prober) Failing() bool {
	return p.failures > 0
}

func (p *Prober) backoff() time.Duration {
	d := time.Second
	for i := 0; i < p.failures && d < MaxBackoff; i++ {
		d *= 2
	}
	if d > MaxBackoff {
		d = MaxBackoff
	}
	return d
}
