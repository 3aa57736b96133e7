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


package tui

import (
	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/session"
)

// SearchCompleted is sent when a backend search settles.
type SearchCompleted struct {
	Ticket   session.Ticket
	Response *core.SearchResponse
	Err      error
}

// FeedbackSent is sent when a feedback request settles.
type FeedbackSent struct {
	Request core.FeedbackRequest
	Err     error
}

// HealthChecked is sent when the startup health check finishes.
type HealthChecked struct {
	Err error
}
