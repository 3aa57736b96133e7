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


package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-crypt/x/blake2b"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/songfinder/core"
)

const (
	historyFormatVersion = 1
	checksumSize         = 8 // blake2b-64
)

// MarshalHistory serializes a history sequence.
//
// Layout: format version, record count, the records, then a blake2b-64
// checksum of everything before it.
func MarshalHistory(entries []core.HistoryEntry) ([]byte, error) {
	records := make([]HistoryRecord, 0, len(entries))
	for _, entry := range entries {
		payload, err := json.Marshal(entry.Result)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		records = append(records, HistoryRecord{
			Query:         entry.Query,
			Timestamp:     entry.Timestamp,
			SelectedTitle: entry.SelectedTitle,
			Payload:       string(payload),
		})
	}

	size := varint.Int.Size(historyFormatVersion) + varint.Int.Size(len(records))
	for _, record := range records {
		size += HistoryRecordMUS.Size(record)
	}

	buf := make([]byte, size+checksumSize)
	n := varint.Int.Marshal(historyFormatVersion, buf)
	n += varint.Int.Marshal(len(records), buf[n:])
	for _, record := range records {
		n += HistoryRecordMUS.Marshal(record, buf[n:])
	}
	copy(buf[n:], checksum(buf[:n]))
	return buf, nil
}

// UnmarshalHistory deserializes a history sequence written by MarshalHistory.
// Every failure wraps ErrSerializationFailed.
func UnmarshalHistory(data []byte) ([]core.HistoryEntry, error) {
	if len(data) < checksumSize {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, ErrTruncatedData)
	}
	body, sum := data[:len(data)-checksumSize], data[len(data)-checksumSize:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, ErrChecksumMismatch)
	}

	version, n, err := varint.Int.Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if version != historyFormatVersion {
		return nil, fmt.Errorf("%w: %w: %d", ErrSerializationFailed, ErrUnsupportedVersion, version)
	}

	count, n1, err := varint.Int.Unmarshal(body[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > len(body) {
		return nil, fmt.Errorf("%w: invalid record count %d", ErrSerializationFailed, count)
	}

	entries := make([]core.HistoryEntry, 0, count)
	for i := 0; i < count; i++ {
		record, n1, err := HistoryRecordMUS.Unmarshal(body[n:])
		n += n1
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrSerializationFailed, i, err)
		}

		var resp core.SearchResponse
		if err := json.Unmarshal([]byte(record.Payload), &resp); err != nil {
			return nil, fmt.Errorf("%w: record %d payload: %w", ErrSerializationFailed, i, err)
		}

		entries = append(entries, core.HistoryEntry{
			Query:         record.Query,
			Timestamp:     record.Timestamp,
			SelectedTitle: record.SelectedTitle,
			Result:        &resp,
		})
	}

	if n != len(body) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(body)-n)
	}
	return entries, nil
}

func checksum(data []byte) []byte {
	h, _ := blake2b.New(checksumSize, nil)
	h.Write(data)
	return h.Sum(nil)
}
