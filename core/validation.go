// Copyright 2025 Poiesic Systems
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


package core

import "fmt"

// ValidateQuery normalizes a query and rejects it when nothing is left.
//
// The returned string is the cache key for the query.
func ValidateQuery(query string) (string, error) {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidQuery, ErrEmptyQuery)
	}
	return normalized, nil
}

// ValidateFeedback checks that an outcome is one the backend accepts.
func ValidateFeedback(outcome Feedback) error {
	if outcome != FeedbackLike && outcome != FeedbackDislike {
		return fmt.Errorf("%w: %q", ErrInvalidFeedback, string(outcome))
	}
	return nil
}

// NormalizeResponse enforces the response invariants in place.
//
// A response without candidates cannot carry a selection; a stray one is dropped.
// Returns true when the response was changed.
func NormalizeResponse(resp *SearchResponse) bool {
	if resp == nil {
		return false
	}
	if len(resp.Candidates) == 0 && resp.Selected != nil {
		resp.Selected = nil
		return true
	}
	return false
}
