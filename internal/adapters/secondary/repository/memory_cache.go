package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

// MemoryBatchCache : implémentation en mémoire du cache de batchs.
// Sert au dev local sans Redis et aux tests. Même sémantique que la version
// Redis, TTL vérifié paresseusement à la lecture.
type MemoryBatchCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryBatch
	now     func() time.Time
}

type memoryBatch struct {
	ids      []string
	deadline time.Time
}

func NewMemoryBatchCache(ttl time.Duration) *MemoryBatchCache {
	return &MemoryBatchCache{
		ttl:     ttl,
		entries: make(map[string]memoryBatch),
		now:     time.Now,
	}
}

func (m *MemoryBatchCache) live(key string) ([]string, bool) {
	entry, ok := m.entries[key]
	if !ok || m.now().After(entry.deadline) {
		return nil, false
	}
	return entry.ids, true
}

func (m *MemoryBatchCache) GetBatch(_ context.Context, userID string, batchNumber int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids, ok := m.live(batchKey(userID, batchNumber))
	if !ok {
		return nil, nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *MemoryBatchCache) PutBatch(_ context.Context, userID string, batchNumber int, ids []string) error {
	if len(ids) == 0 {
		return domain.ErrEmptyBatch
	}
	stored := make([]string, len(ids))
	copy(stored, ids)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[batchKey(userID, batchNumber)] = memoryBatch{
		ids:      stored,
		deadline: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryBatchCache) GetRange(_ context.Context, userID string, batchNumber, offset, count int) ([]string, error) {
	if count <= 0 || offset < 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids, ok := m.live(batchKey(userID, batchNumber))
	if !ok || offset >= len(ids) {
		return nil, nil
	}
	end := offset + count
	if end > len(ids) {
		end = len(ids)
	}
	out := make([]string, end-offset)
	copy(out, ids[offset:end])
	return out, nil
}

func (m *MemoryBatchCache) BatchSize(_ context.Context, userID string, batchNumber int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids, ok := m.live(batchKey(userID, batchNumber))
	if !ok {
		return 0, nil
	}
	return len(ids), nil
}

func (m *MemoryBatchCache) ClearAll(_ context.Context, userID string) error {
	prefix := fmt.Sprintf("reco:%s:", userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

var _ ports.BatchCache = (*MemoryBatchCache)(nil)
