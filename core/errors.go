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

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// ErrInvalidQuery indicates a query failed validation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmptyQuery indicates the query is empty after trimming.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrTransport indicates the backend could not be reached.
	ErrTransport = errors.New("search service unreachable")

	// ErrBackend indicates the backend answered with a non-success status.
	ErrBackend = errors.New("search service error")

	// ErrInvalidResponse indicates a success response whose body could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from search service")

	// ErrNoSelection indicates feedback was attempted with no selected song.
	ErrNoSelection = errors.New("no song selected")

	// ErrInvalidFeedback indicates an unknown feedback outcome.
	ErrInvalidFeedback = errors.New("invalid feedback")
)

// BackendError is a non-success response from the search service.
type BackendError struct {
	StatusCode int
	Message    string
}

// GenericBackendMessage returns the fallback message used when the backend
// does not explain a failure.
func GenericBackendMessage(statusCode int) string {
	return fmt.Sprintf("request failed with status %d", statusCode)
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return GenericBackendMessage(e.StatusCode)
	}
	return e.Message
}

// Unwrap lets errors.Is match ErrBackend.
func (e *BackendError) Unwrap() error {
	return ErrBackend
}
