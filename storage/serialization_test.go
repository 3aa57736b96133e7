package storage

import (
	"testing"
	"time"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/songfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []core.HistoryEntry {
	distance := 0.4
	return []core.HistoryEntry{
		{
			Query:         "song about peace",
			Timestamp:     time.UnixMilli(1_700_000_000_123),
			SelectedTitle: "Song A",
			Result: &core.SearchResponse{
				Candidates: []core.Candidate{
					{ID: "1", Title: "Song A", Lyrics: "line one\nline two", SimilarityDistance: &distance},
				},
				Selected:  &core.Candidate{ID: "1", Title: "Song A"},
				Reasoning: "calm",
			},
		},
		{
			Query:     "ничего",
			Timestamp: time.UnixMilli(1_699_999_999_000),
			Result:    &core.SearchResponse{Message: "nothing found"},
		},
	}
}

func TestHistoryRecordMUS(t *testing.T) {
	record := HistoryRecord{
		Query:         "песня о мире",
		Timestamp:     time.UnixMilli(1_700_000_000_123),
		SelectedTitle: "Song A",
		Payload:       `{"candidates":[]}`,
	}

	buf := make([]byte, HistoryRecordMUS.Size(record))
	n := HistoryRecordMUS.Marshal(record, buf)
	require.Equal(t, len(buf), n)

	decoded, n, err := HistoryRecordMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.True(t, record.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, record.Query, decoded.Query)
	assert.Equal(t, record.SelectedTitle, decoded.SelectedTitle)
	assert.Equal(t, record.Payload, decoded.Payload)

	skipped, err := HistoryRecordMUS.Skip(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), skipped)
}

func TestMarshalUnmarshalHistory(t *testing.T) {
	t.Run("entries", func(t *testing.T) {
		entries := sampleEntries()

		data, err := MarshalHistory(entries)
		require.NoError(t, err)

		decoded, err := UnmarshalHistory(data)
		require.NoError(t, err)
		require.Len(t, decoded, len(entries))

		for i := range entries {
			assert.Equal(t, entries[i].Query, decoded[i].Query)
			assert.True(t, entries[i].Timestamp.Equal(decoded[i].Timestamp), "entry %d timestamp", i)
			assert.Equal(t, entries[i].SelectedTitle, decoded[i].SelectedTitle)
			require.NotNil(t, decoded[i].Result)
			assert.Equal(t, *entries[i].Result, *decoded[i].Result)
		}
	})

	t.Run("empty sequence", func(t *testing.T) {
		data, err := MarshalHistory(nil)
		require.NoError(t, err)

		decoded, err := UnmarshalHistory(data)
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})
}

func TestUnmarshalHistory_Invalid(t *testing.T) {
	valid, err := MarshalHistory(sampleEntries())
	require.NoError(t, err)

	corrupted := append([]byte(nil), valid...)
	corrupted[3] ^= 0xff

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty data", []byte{}, ErrTruncatedData},
		{"shorter than checksum", []byte{1, 2, 3}, ErrTruncatedData},
		{"flipped byte", corrupted, ErrChecksumMismatch},
		{"truncated", valid[:len(valid)-1], ErrChecksumMismatch},
		{"foreign text", []byte(`[{"query":"old format"}]`), ErrChecksumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalHistory(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnmarshalHistory_UnknownVersion(t *testing.T) {
	body := make([]byte, varint.Int.Size(2)+varint.Int.Size(0))
	n := varint.Int.Marshal(2, body)
	varint.Int.Marshal(0, body[n:])
	data := append(body, checksum(body)...)

	_, err := UnmarshalHistory(data)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestHistoryRecordMUS_MillisecondPrecision(t *testing.T) {
	ts := time.UnixMilli(1_700_000_000_123).Add(456 * time.Microsecond)
	record := HistoryRecord{Query: "q", Timestamp: ts}

	buf := make([]byte, HistoryRecordMUS.Size(record))
	HistoryRecordMUS.Marshal(record, buf)
	decoded, _, err := HistoryRecordMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_123), decoded.Timestamp.UnixMilli())
	assert.True(t, decoded.Timestamp.Equal(ts.Truncate(time.Millisecond)))
}
