package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(key string) *Record {
	return &Record{
		OrganizationID: "org-1",
		Method:         "POST",
		Path:           "/api/v1/clients",
		Key:            key,
		Fingerprint:    Fingerprint([]byte(`{"full_name":"Maria"}`)),
		Status:         201,
		Body:           []byte(`{"id":"client-1"}`),
		StoredAt:       time.Now(),
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Find(ctx, "org-1", "POST", "/api/v1/clients", "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := testRecord("k1")
	require.NoError(t, store.Save(ctx, rec, time.Minute))

	found, err := store.Find(ctx, "org-1", "POST", "/api/v1/clients", "k1")
	require.NoError(t, err)
	assert.Equal(t, 201, found.Status)
	assert.Equal(t, rec.Body, found.Body)

	// scoping: same key, different path, no hit
	_, err = store.Find(ctx, "org-1", "POST", "/api/v1/agents", "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	// scoping: same key, different organization, no hit
	_, err = store.Find(ctx, "org-2", "POST", "/api/v1/clients", "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_FirstWriterWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := testRecord("k1")
	require.NoError(t, store.Save(ctx, first, time.Minute))

	second := testRecord("k1")
	second.Body = []byte(`{"id":"client-2"}`)
	require.NoError(t, store.Save(ctx, second, time.Minute))

	found, err := store.Find(ctx, "org-1", "POST", "/api/v1/clients", "k1")
	require.NoError(t, err)
	assert.Equal(t, first.Body, found.Body)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("k1"), -time.Second))
	_, err := store.Find(ctx, "org-1", "POST", "/api/v1/clients", "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, store.PurgeExpired())
	assert.Equal(t, 0, store.PurgeExpired())
}

// TestPurpose: Verifies key reuse with a different payload is rejected
// instead of replaying the stored response.
// Scope: Unit Test
// Expected: Check returns ErrMismatch on fingerprint divergence.
func TestCheck_FingerprintMismatch(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec := testRecord("k1")
	require.NoError(t, store.Save(ctx, rec, time.Minute))

	replay, err := Check(ctx, store, "org-1", "POST", "/api/v1/clients", "k1", rec.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, rec.Body, replay.Body)

	_, err = Check(ctx, store, "org-1", "POST", "/api/v1/clients", "k1", Fingerprint([]byte(`{"full_name":"Georg"}`)))
	assert.ErrorIs(t, err, ErrMismatch)

	first, err := Check(ctx, store, "org-1", "POST", "/api/v1/clients", "unseen", "any")
	require.NoError(t, err)
	assert.Nil(t, first)
}

func TestFingerprint_Stable(t *testing.T) {
	assert.Equal(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abc")))
	assert.NotEqual(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abd")))
	assert.Len(t, Fingerprint(nil), 64)
}
