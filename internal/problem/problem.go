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

// Package problem implements the RFC 7807 style error body returned by
// every API endpoint.
package problem

import (
	"fmt"
	"net/http"
)

// Stable machine-readable error codes.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_REQUIRED"
	CodePermission     = "PERMISSION_DENIED"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeInternal       = "INTERNAL_ERROR"
)

// Problem is an RFC 7807 problem details object. RequestID carries the
// correlation ID so a caller can quote it when reporting an error.
type Problem struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail,omitempty"`
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("%s: %s (%d)", p.Code, p.Detail, p.Status)
}

// WithRequestID attaches a correlation ID to the problem.
func (p *Problem) WithRequestID(id string) *Problem {
	p.RequestID = id
	return p
}

func newProblem(status int, code, detail string) *Problem {
	return &Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Code:   code,
	}
}

// Validation returns a 400 problem.
func Validation(detail string) *Problem {
	return newProblem(http.StatusBadRequest, CodeValidation, detail)
}

// ValidationFields returns a 400 problem with per-field messages.
func ValidationFields(detail string, fields map[string]string) *Problem {
	p := newProblem(http.StatusBadRequest, CodeValidation, detail)
	p.Fields = fields
	return p
}

// Unauthorized returns a 401 problem.
func Unauthorized(detail string) *Problem {
	return newProblem(http.StatusUnauthorized, CodeAuthentication, detail)
}

// Forbidden returns a 403 problem.
func Forbidden(detail string) *Problem {
	return newProblem(http.StatusForbidden, CodePermission, detail)
}

// NotFound returns a 404 problem.
func NotFound(detail string) *Problem {
	return newProblem(http.StatusNotFound, CodeNotFound, detail)
}

// Conflict returns a 409 problem.
func Conflict(detail string) *Problem {
	return newProblem(http.StatusConflict, CodeConflict, detail)
}

// RateLimited returns a 429 problem.
func RateLimited(detail string) *Problem {
	return newProblem(http.StatusTooManyRequests, CodeRateLimit, detail)
}

// Internal returns a 500 problem. The detail is intentionally generic;
// the real error goes to the log, never to the caller.
func Internal() *Problem {
	return newProblem(http.StatusInternalServerError, CodeInternal, "an internal error occurred")
}
