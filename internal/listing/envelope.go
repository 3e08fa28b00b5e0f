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

package listing

// Pagination is the pagination block of a list response.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Envelope is the standard list response body.
type Envelope struct {
	Data       any               `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Filters    map[string]string `json:"filters,omitempty"`
}

// NewEnvelope builds the envelope for one page of results.
func NewEnvelope(data any, p Params, total int) Envelope {
	pages := 0
	if p.PageSize > 0 {
		pages = (total + p.PageSize - 1) / p.PageSize
	}
	return Envelope{
		Data: data,
		Pagination: Pagination{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      total,
			TotalPages: pages,
		},
		Filters: p.Requested(),
	}
}
