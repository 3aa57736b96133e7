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


// Package api is the HTTP client for the song search backend.
//
// The backend exposes three endpoints under a common base URL:
//
//	POST {base}/search    {"query": "..."}
//	POST {base}/feedback  {"query": "...", "selected_song_id": "...", "feedback": "like"}
//	GET  {base}/health
//
// Requests are instrumented with OpenTelemetry, tagged with an X-Request-ID
// header and optionally rate limited. Search and feedback requests are sent
// exactly once; only the health check is retried (see CheckHealth).
package api
