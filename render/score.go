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


package render

import (
	"fmt"
	"math"

	"github.com/poiesic/songfinder/core"
)

// maxDistance is the largest similarity distance the backend produces.
const maxDistance = 2.0

// Score converts whichever score representation a candidate carries into a
// percentage in [0, 100].
//
// Precedence when several are present: match percent, hybrid score, similarity
// distance. Returns false when the candidate carries no usable score.
func Score(c *core.Candidate) (float64, bool) {
	if c == nil {
		return 0, false
	}
	if v, ok := finite(c.MatchPercent); ok {
		return clampPercent(v), true
	}
	if v, ok := finite(c.HybridScore); ok {
		return clampPercent(v * 100), true
	}
	if v, ok := finite(c.SimilarityDistance); ok {
		return clampPercent((1 - math.Min(v, maxDistance)/maxDistance) * 100), true
	}
	return 0, false
}

// FormatScore renders a percentage with one decimal place.
func FormatScore(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
