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
	"bytes"
	"encoding/json"
	"strings"
)

// lyricsShape identifies which of the shapes the backend used for a lyrics field.
type lyricsShape int

const (
	lyricsAbsent lyricsShape = iota
	lyricsText               // a single string
	lyricsLines              // an array of lines
	lyricsObject             // any other JSON value, kept as serialized JSON
)

func classifyLyrics(raw json.RawMessage) lyricsShape {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return lyricsAbsent
	}
	switch trimmed[0] {
	case '"':
		return lyricsText
	case '[':
		return lyricsLines
	default:
		return lyricsObject
	}
}

// decodeLyrics resolves the lyrics union into its canonical string.
// Malformed input yields an empty string rather than an error.
func decodeLyrics(raw json.RawMessage) string {
	switch classifyLyrics(raw) {
	case lyricsText:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return ""
		}
		return text
	case lyricsLines:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return ""
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			var line string
			if err := json.Unmarshal(item, &line); err != nil {
				line = string(bytes.TrimSpace(item))
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	case lyricsObject:
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return ""
		}
		return out.String()
	default:
		return ""
	}
}

// decodeStringList accepts either a single string or an array of strings.
// Non-string array elements are skipped.
func decodeStringList(raw json.RawMessage) []string {
	switch classifyLyrics(raw) {
	case lyricsText:
		var single string
		if err := json.Unmarshal(raw, &single); err != nil || single == "" {
			return nil
		}
		return []string{single}
	case lyricsLines:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		var values []string
		for _, item := range items {
			var value string
			if err := json.Unmarshal(item, &value); err == nil && value != "" {
				values = append(values, value)
			}
		}
		return values
	default:
		return nil
	}
}
