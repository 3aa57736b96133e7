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


package history

import "errors"

var (
	// ErrNilResponse indicates an attempt to cache a missing response.
	ErrNilResponse = errors.New("response cannot be nil")

	// ErrEntryOutOfRange indicates a history index outside the current sequence.
	ErrEntryOutOfRange = errors.New("history entry out of range")

	// ErrPersistFailed indicates the in-memory history changed but could not be saved.
	ErrPersistFailed = errors.New("failed to persist history")
)
