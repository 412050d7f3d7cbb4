package client

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrCircuitOpen is returned while the search endpoint is cooling down
var ErrCircuitOpen = errors.New("circuit breaker is open")

type circuitBreaker struct {
	mu        sync.RWMutex
	openUntil time.Time
	cooldown  time.Duration
}

func newCircuitBreaker(cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{cooldown: cooldown}
}

func (b *circuitBreaker) isOpen() bool {
	b.mu.RLock()
	now := time.Now()
	open := now.Before(b.openUntil)
	triggered := !b.openUntil.IsZero()
	b.mu.RUnlock()

	if !open && triggered {
		b.mu.Lock()
		// Double-check after acquiring write lock
		if !b.openUntil.IsZero() && now.After(b.openUntil) {
			b.openUntil = time.Time{}
			log.Infof("✅ Circuit breaker automatically re-enabled - requests are now allowed")
		}
		b.mu.Unlock()
	}

	return open
}

func (b *circuitBreaker) trigger() {
	if b.cooldown <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.openUntil = time.Now().Add(b.cooldown)
	log.Warnf("🚫 Circuit breaker activated! Search requests disabled until %v", b.openUntil.Format("15:04:05"))
}

func (b *circuitBreaker) remaining() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()

	remaining := time.Until(b.openUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}
