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

// Package id generates time-ordered identifiers for all persisted rows.
package id

import "github.com/google/uuid"

// NewUUIDv7 returns a new UUIDv7 string. UUIDv7 is time-ordered, which keeps
// primary key indexes append-mostly under insert-heavy CRUD load.
func NewUUIDv7() string {
	v7, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source fails; fall back to v4.
		return uuid.NewString()
	}
	return v7.String()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
