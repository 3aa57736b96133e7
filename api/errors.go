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


package api

import "errors"

var (
	// ErrUnhealthy indicates the backend answered the health check with anything but "ok".
	ErrUnhealthy = errors.New("backend is not healthy")

	// ErrInvalidMaxAttempts indicates a retry budget below one attempt.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidBaseURL indicates a backend address that is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid backend URL")
)
