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

// Package idempotency deduplicates write requests keyed by the
// Idempotency-Key header. Records are scoped to organization, method
// and path so the same key may be reused across endpoints, and carry a
// fingerprint of the request body so key reuse with a different payload
// is detected rather than silently replayed.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrNotFound means no record exists for the key.
	ErrNotFound = errors.New("idempotency record not found")
	// ErrMismatch means the key was reused with a different payload.
	ErrMismatch = errors.New("idempotency key reused with different payload")
)

// Record is a stored response to a completed write.
type Record struct {
	OrganizationID string    `json:"organization_id"`
	Method         string    `json:"method"`
	Path           string    `json:"path"`
	Key            string    `json:"key"`
	Fingerprint    string    `json:"fingerprint"`
	Status         int       `json:"status"`
	Body           []byte    `json:"body"`
	StoredAt       time.Time `json:"stored_at"`
}

// Store persists idempotency records for a bounded lifetime.
type Store interface {
	Find(ctx context.Context, orgID, method, path, key string) (*Record, error)
	Save(ctx context.Context, rec *Record, ttl time.Duration) error
}

// Fingerprint hashes a request body for reuse detection.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Check looks up a prior record for the request and validates the
// payload fingerprint. A nil record with nil error means first sight.
func Check(ctx context.Context, store Store, orgID, method, path, key, fingerprint string) (*Record, error) {
	rec, err := store.Find(ctx, orgID, method, path, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Fingerprint != fingerprint {
		return nil, ErrMismatch
	}
	return rec, nil
}
