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


// Package batch runs many searches at once.
//
// A Runner takes a list of queries, serves the ones already in the history
// from it, searches the rest through an ants worker pool and records every
// successful result in the history. History writes happen on the calling
// goroutine, in input order, after all searches have settled.
package batch
