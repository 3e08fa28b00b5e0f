// Copyright 2026 The TourDesk Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is the single-process fallback used when Redis is not
// configured. Expired entries are dropped lazily on read and can be
// swept with PurgeExpired.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryEntry
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryEntry)}
}

func memoryKey(orgID, method, path, key string) string {
	return fmt.Sprintf("%s:%s:%s:%s", orgID, method, path, key)
}

func (s *MemoryStore) Find(_ context.Context, orgID, method, path, key string) (*Record, error) {
	s.mu.RLock()
	entry, ok := s.records[memoryKey(orgID, method, path, key)]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	rec := entry.rec
	return &rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec *Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storeKey := memoryKey(rec.OrganizationID, rec.Method, rec.Path, rec.Key)
	if entry, ok := s.records[storeKey]; ok && time.Now().Before(entry.expiresAt) {
		// first writer wins, matching Redis SetNX
		return nil
	}
	s.records[storeKey] = memoryEntry{rec: *rec, expiresAt: time.Now().Add(ttl)}
	return nil
}

// PurgeExpired removes dead entries and reports how many were dropped.
func (s *MemoryStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	purged := 0
	for key, entry := range s.records {
		if now.After(entry.expiresAt) {
			delete(s.records, key)
			purged++
		}
	}
	return purged
}
