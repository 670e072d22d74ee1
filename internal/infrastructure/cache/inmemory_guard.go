package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lotiva/backend/internal/domain/shared"
)

type claim struct {
	expiresAt time.Time
}

// InMemoryGuard implements OperationGuard using an in-memory map.
// This is suitable for single-instance deployments and testing
type InMemoryGuard struct {
	mu        sync.Mutex
	claims    map[string]claim
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryGuard creates a new in-memory guard.
// It starts a background goroutine to drop expired claims
func NewInMemoryGuard() *InMemoryGuard {
	g := &InMemoryGuard{
		claims:   make(map[string]claim),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupLoop()

	return g
}

// Acquire claims key for ttl.
// Returns false while an unexpired claim on key exists
func (g *InMemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("guard key is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if c, exists := g.claims[key]; exists && now.Before(c.expiresAt) {
		return false, nil
	}

	g.claims[key] = claim{expiresAt: now.Add(ttl)}
	return true, nil
}

// Release frees key
func (g *InMemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claims, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times
func (g *InMemoryGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

func (g *InMemoryGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *InMemoryGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, c := range g.claims {
		if !now.Before(c.expiresAt) {
			delete(g.claims, key)
		}
	}
}

// Size returns the number of held claims (for testing/monitoring)
func (g *InMemoryGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.claims)
}

var _ shared.OperationGuard = (*InMemoryGuard)(nil)
