//go:build tracing

package trace

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExporterWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path)
	require.NoError(t, err)
	defer exporter.Close()

	record := &TraceRecord{
		Timestamp:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		OperationID: "op-1",
		Operation:   "cluster",
		DurationMs:  42,
		Status:      "success",
		Spans: []SpanRecord{
			{Name: "pairwise", DurationMs: 30, OK: true, Counters: map[string]int64{"clusterCount": 2}},
		},
	}
	require.NoError(t, exporter.Export(context.Background(), record))
	require.NoError(t, exporter.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	scanner := bufio.NewScanner(file)
	require.True(t, scanner.Scan(), "expected one JSON line")

	var decoded TraceRecord
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &decoded))
	assert.Equal(t, "cluster", decoded.Operation)
	assert.Equal(t, "success", decoded.Status)
	require.Len(t, decoded.Spans, 1)
	assert.Equal(t, "pairwise", decoded.Spans[0].Name)
	assert.Equal(t, int64(2), decoded.Spans[0].Counters["clusterCount"])
}

func TestFileExporterRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path, WithMaxSize(64), WithMaxRotatedFiles(2))
	require.NoError(t, err)
	defer exporter.Close()

	record := &TraceRecord{
		OperationID: "op",
		Operation:   "analyze",
		Status:      "success",
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, exporter.Export(context.Background(), record))
	}
	require.NoError(t, exporter.Close())

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "expected at least one rotated file")
}

func TestFileExporterClosedRejectsExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path)
	require.NoError(t, err)
	require.NoError(t, exporter.Close())

	err = exporter.Export(context.Background(), &TraceRecord{Operation: "cluster"})
	assert.Error(t, err)

	// Double close is fine.
	assert.NoError(t, exporter.Close())
}
