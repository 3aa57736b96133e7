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


// Package tui implements the interactive front ends of songfinder.
//
// App is a Bubble Tea model that drives a session.Session: it submits
// queries, shows the loading indicator, the ranked cards with expandable
// lyrics, the selected song, the history list and the clear-history
// confirmation. Network calls run as tea.Cmds and report back with
// SearchCompleted, FeedbackSent and HealthChecked messages, so every state
// change happens inside Update.
//
// RunLine offers the same workflow one line at a time for terminals that
// cannot host the full UI, and WriteResult and WriteHistory render session
// state as plain text for the command line.
package tui
