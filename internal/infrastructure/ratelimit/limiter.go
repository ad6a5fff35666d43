// Package ratelimit guards outbound market API calls with a sliding window,
// a concurrency cap and a cooldown entered on upstream throttling.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"wfm_flipper/internal/domain"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/errcodes"
)

const (
	defaultWindow   = time.Second
	defaultCooldown = time.Minute
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// ErrRateLimited is returned by Acquire while the cooldown is active.
var ErrRateLimited = domain.NewError(errcodes.RateLimited, "Rate limit active") //nolint:gochecknoglobals

type Status struct {
	ActiveRequests     int
	MaxConcurrent      int
	RequestsInWindow   int
	RequestsPerSecond  int
	RateLimitDetected  bool
	TimeSinceRateLimit time.Duration
	CooldownRemaining  time.Duration
	Cooldowns          uint64
}

type Limiter struct {
	requestsPerSecond int
	maxConcurrent     int
	window            time.Duration
	cooldown          time.Duration
	slots             *semaphore.Weighted
	now               func() time.Time

	mu            sync.Mutex
	timestamps    []time.Time
	active        int
	rateLimited   bool
	rateLimitedAt time.Time
	cooldowns     uint64
}

type Option func(*Limiter)

func WithWindow(window time.Duration) Option {
	return func(l *Limiter) {
		l.window = window
	}
}

func WithCooldown(cooldown time.Duration) Option {
	return func(l *Limiter) {
		l.cooldown = cooldown
	}
}

// WithClock replaces time.Now for cooldown and window bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func New(requestsPerSecond, maxConcurrent int, opts ...Option) *Limiter {
	l := &Limiter{
		requestsPerSecond: max(requestsPerSecond, 1),
		maxConcurrent:     max(maxConcurrent, 1),
		window:            defaultWindow,
		cooldown:          defaultCooldown,
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.slots = semaphore.NewWeighted(int64(l.maxConcurrent))
	l.timestamps = make([]time.Time, 0, l.requestsPerSecond)

	return l
}

// Acquire blocks until one more call may be dispatched and reserves a
// concurrency slot for it. Every successful Acquire must be paired with
// exactly one Release. It fails fast with ErrRateLimited during cooldown and
// with ctx.Err() when ctx ends while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.checkCooldown(ctx); err != nil {
		return err
	}

	if err := l.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("slots.Acquire: %w", err)
	}

	for {
		wait, ok, err := l.reserveWindow(ctx)
		if err != nil {
			l.slots.Release(1)
			return err
		}

		if ok {
			return nil
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			l.slots.Release(1)

			return fmt.Errorf("window wait: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// Release frees the slot taken by Acquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	if l.active > 0 {
		l.active--
	}
	l.mu.Unlock()

	l.slots.Release(1)
}

// Do runs fn between Acquire and Release.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()

	return fn(ctx)
}

func (l *Limiter) SetRateLimited() {
	l.mu.Lock()
	l.rateLimited = true
	l.rateLimitedAt = l.now()
	l.cooldowns++
	l.mu.Unlock()

	slog.Warn("upstream rate limit detected, cooling down", slog.Duration("cooldown", l.cooldown))
}

func (l *Limiter) ClearRateLimit() {
	l.mu.Lock()
	wasLimited := l.rateLimited
	l.rateLimited = false
	l.mu.Unlock()

	if wasLimited {
		slog.Info("upstream rate limit cleared")
	}
}

// Observe feeds an upstream status code back into the limiter: 429 starts
// the cooldown and 200 ends it.
func (l *Limiter) Observe(statusCode int) {
	switch statusCode {
	case http.StatusTooManyRequests:
		l.SetRateLimited()
	case http.StatusOK:
		l.ClearRateLimit()
	}
}

// CooldownRemaining is zero when no cooldown is pending.
func (l *Limiter) CooldownRemaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cooldownRemainingLocked(l.now())
}

func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictLocked(now)

	status := Status{
		ActiveRequests:    l.active,
		MaxConcurrent:     l.maxConcurrent,
		RequestsInWindow:  len(l.timestamps),
		RequestsPerSecond: l.requestsPerSecond,
		RateLimitDetected: l.rateLimited,
		CooldownRemaining: l.cooldownRemainingLocked(now),
		Cooldowns:         l.cooldowns,
	}

	if l.rateLimited {
		status.TimeSinceRateLimit = now.Sub(l.rateLimitedAt)
	}

	return status
}

func (l *Limiter) checkCooldown(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.checkCooldownLocked(ctx)
}

func (l *Limiter) checkCooldownLocked(ctx context.Context) error {
	if !l.rateLimited {
		return nil
	}

	if l.cooldownRemainingLocked(l.now()) > 0 {
		return ErrRateLimited
	}

	l.rateLimited = false
	logger(ctx).Info("upstream rate limit cooldown expired")

	return nil
}

// reserveWindow records a dispatch if the window has room, otherwise it
// reports how long until the oldest entry leaves the window. A cooldown that
// started while the caller waited fails the reservation.
func (l *Limiter) reserveWindow(ctx context.Context) (time.Duration, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkCooldownLocked(ctx); err != nil {
		return 0, false, err
	}

	now := l.now()
	l.evictLocked(now)

	if len(l.timestamps) < l.requestsPerSecond {
		l.timestamps = append(l.timestamps, now)
		l.active++

		return 0, true, nil
	}

	return max(l.timestamps[0].Add(l.window).Sub(now), time.Millisecond), false, nil
}

func (l *Limiter) evictLocked(now time.Time) {
	cutoff := now.Add(-l.window)

	i := 0
	for i < len(l.timestamps) && !l.timestamps[i].After(cutoff) {
		i++
	}

	if i > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[i:]...)
	}
}

func (l *Limiter) cooldownRemainingLocked(now time.Time) time.Duration {
	if !l.rateLimited {
		return 0
	}

	return max(l.cooldown-now.Sub(l.rateLimitedAt), 0)
}
