package syncer

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"pppoed/internal/log"
	"pppoed/internal/model"
	"pppoed/internal/storage"
)

// ErrSyncInProgress is returned when a sync is requested while another
// one is still running
var ErrSyncInProgress = errors.New("sync already in progress")

// DefaultDelay simulates the round trip to the routers
const DefaultDelay = 1500 * time.Millisecond

// Clamp bounds for the simulated health walk
const (
	minUsage = 5.0
	maxUsage = 95.0
	minTemp  = 30.0
	maxTemp  = 80.0
)

// Syncer refreshes router health with simulated data. Only one sync
// runs at a time; concurrent requests are rejected rather than queued
// so a slow sync can never overwrite a newer one.
type Syncer struct {
	mu           sync.Mutex
	store        storage.RouterStorage
	rng          *rand.Rand
	delay        time.Duration
	syncing      bool
	lastSyncTime time.Time
	lastErr      error
}

// Option configures a Syncer
type Option func(*Syncer)

// WithDelay overrides the simulated network delay
func WithDelay(d time.Duration) Option {
	return func(s *Syncer) { s.delay = d }
}

// WithRand overrides the random source, for deterministic tests
func WithRand(rng *rand.Rand) Option {
	return func(s *Syncer) { s.rng = rng }
}

// New creates a Syncer over the given router storage
func New(store storage.RouterStorage, opts ...Option) *Syncer {
	s := &Syncer{
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		delay: DefaultDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Syncing reports whether a sync is currently running
func (s *Syncer) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// LastSyncTime returns when the last successful sync finished, zero if never
func (s *Syncer) LastSyncTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSyncTime
}

// Err returns the error of the last sync attempt, nil on success
func (s *Syncer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Sync refreshes the health of every router. The replacement collection
// is built completely before commit; on any error, including context
// cancellation, the stored state is left untouched.
func (s *Syncer) Sync(ctx context.Context) error {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return ErrSyncInProgress
	}
	s.syncing = true
	s.mu.Unlock()

	err := s.run(ctx)

	s.mu.Lock()
	s.syncing = false
	s.lastErr = err
	if err == nil {
		s.lastSyncTime = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		log.Warn("router sync failed", "error", err)
	}
	return err
}

func (s *Syncer) run(ctx context.Context) error {
	routers, err := s.store.ListRouters(nil)
	if err != nil {
		return err
	}

	// Simulated round trip
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	now := time.Now()
	updated := make([]model.Router, len(routers))
	for i, router := range routers {
		updated[i] = s.walk(router, now)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.ReplaceRouters(updated); err != nil {
		return err
	}

	log.Info("router sync complete", "routers", len(updated))
	return nil
}

// walk applies one bounded random step to a router's counters and health
func (s *Syncer) walk(router model.Router, now time.Time) model.Router {
	connected := float64(router.ConnectedClients) + s.step(1)
	router.ConnectedClients = int(clamp(connected, 0, float64(router.TotalClients)))
	router.DisconnectedClients = router.TotalClients - router.ConnectedClients

	router.Health.CPUUsage = clamp(router.Health.CPUUsage+s.step(5), minUsage, maxUsage)
	router.Health.MemoryUsage = clamp(router.Health.MemoryUsage+s.step(5), minUsage, maxUsage)
	router.Health.Temperature = clamp(router.Health.Temperature+s.step(2), minTemp, maxTemp)
	router.Health.LastSeen = now

	return router
}

// step returns a uniform random value in [-n, n]
func (s *Syncer) step(n int) float64 {
	return float64(s.rng.Intn(2*n+1) - n)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
