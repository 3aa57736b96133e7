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


// Package session holds the state of one interactive songfinder client.
//
// A Session is the presentation state machine:
//
//	Idle -> Searching -> {Success, Empty, Error} -> Searching -> ...
//
// Begin enters Searching and either settles at once from the history cache or
// leaves the request to the caller, who reports back with Complete. While a
// search is outstanding, new submissions are refused.
//
// Alongside the top-level status the session owns the per-card expansion
// state (reset on every render), a one-shot confirmation modal, the startup
// health warning and the FeedbackGate that limits feedback to one submission
// per displayed selection.
package session
