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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps the OTel meter together with the request-level instruments
// the HTTP layer records into.
type Meter struct {
	meter metric.Meter

	requests        metric.Int64Counter
	requestDuration metric.Float64Histogram
	rateLimited     metric.Int64Counter
	idempotentHits  metric.Int64Counter
}

// New creates the meter and its instruments. Disabled metrics use the
// noop meter, so recording is always safe.
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	var meter metric.Meter
	if cfg.Enabled {
		meter = otel.Meter(serviceName)
	} else {
		meter = otel.Meter("noop")
	}

	m := &Meter{meter: meter}

	var err error
	if m.requests, err = meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Completed HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	if m.rateLimited, err = meter.Int64Counter(
		"http.server.rate_limited",
		metric.WithDescription("Requests rejected by the rate limiter"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate-limit counter: %w", err)
	}
	if m.idempotentHits, err = meter.Int64Counter(
		"http.server.idempotent_replays",
		metric.WithDescription("POST responses replayed from the idempotency store"),
	); err != nil {
		return nil, fmt.Errorf("failed to create idempotency counter: %w", err)
	}

	return m, nil
}

// RecordRequest records one completed request.
func (m *Meter) RecordRequest(ctx context.Context, method, route string, status int, durationMS float64) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, durationMS, attrs)
}

// RecordRateLimited counts a 429 rejection.
func (m *Meter) RecordRateLimited(ctx context.Context) {
	m.rateLimited.Add(ctx, 1)
}

// RecordIdempotentReplay counts a replayed POST response.
func (m *Meter) RecordIdempotentReplay(ctx context.Context) {
	m.idempotentHits.Add(ctx, 1)
}
