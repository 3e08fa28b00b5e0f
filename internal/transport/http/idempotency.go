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

package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/idempotency"
	"github.com/tourdesk/tourdesk/internal/observability/logger"
	"github.com/tourdesk/tourdesk/internal/problem"
)

// IdempotencyMiddleware replays stored responses for POSTs carrying an
// Idempotency-Key header. Records are scoped to organization, method,
// path and key; a replay with a different body is a conflict. The
// store is best effort: if it is unreachable the request proceeds,
// because losing replay protection beats refusing writes.
func (h *Handler) IdempotencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if r.Method != http.MethodPost || key == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondProblem(w, r, problem.Validation("failed to read request body"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		orgID := GetOrganizationID(r.Context())
		fingerprint := idempotency.Fingerprint(body)

		rec, err := idempotency.Check(r.Context(), h.idempotency, orgID, r.Method, r.URL.Path, key, fingerprint)
		switch {
		case errors.Is(err, idempotency.ErrMismatch):
			respondProblem(w, r, problem.Conflict("Idempotency-Key was already used with a different request body"))
			return
		case err != nil:
			slog.WarnContext(r.Context(), "idempotency check failed, proceeding without replay protection",
				logger.Error(err),
				logger.IdempotencyKey(key),
			)
		case rec != nil:
			h.auditLogger.Log(r.Context(), audit.Event{
				Type:           audit.TypeIdempotentReplay,
				OrganizationID: orgID,
				ActorID:        GetUserID(r.Context()),
				Resource:       r.URL.Path,
				IPAddress:      getClientIP(r),
			})
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotency-Replayed", "true")
			w.WriteHeader(rec.Status)
			w.Write(rec.Body)
			return
		}

		rec2 := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec2, r)

		// Only successful outcomes are worth replaying; a failed write
		// should be retryable with the same key.
		if rec2.status >= 200 && rec2.status < 300 {
			record := &idempotency.Record{
				OrganizationID: orgID,
				Method:         r.Method,
				Path:           r.URL.Path,
				Key:            key,
				Fingerprint:    fingerprint,
				Status:         rec2.status,
				Body:           rec2.body.Bytes(),
				StoredAt:       time.Now(),
			}
			if err := h.idempotency.Save(r.Context(), record, h.idempotencyTTL); err != nil {
				slog.WarnContext(r.Context(), "failed to store idempotency record",
					logger.Error(err),
					logger.IdempotencyKey(key),
				)
			}
		}
	})
}

// responseRecorder tees the response so a copy can be stored for
// replay.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
