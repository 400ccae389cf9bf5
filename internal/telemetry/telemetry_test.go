package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info", FormatJSON)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("indexed", zap.Int("count", 3))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "indexed", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 3, entry["count"])
	assert.Contains(t, entry, "ts")
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "DEBUG", FormatConsole)
	require.NoError(t, err)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewLoggerInvalid(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "loud", FormatJSON)
	assert.Error(t, err)

	_, err = NewLogger(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordEmbedding("hash", "batch_embed", 10*time.Millisecond, 12, nil)
	m.RecordEmbedding("hash", "embed", time.Millisecond, 0, errors.New("boom"))
	m.RecordSearch("cosine", time.Millisecond, 3)
	m.RecordQuery("answered")
	m.RecordQuery("answered")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingErrors.WithLabelValues("hash", "embed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EmbeddingErrors.WithLabelValues("hash", "batch_embed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Queries.WithLabelValues("answered")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchDuration))
	assert.Equal(t, 2, testutil.CollectAndCount(m.EmbeddingDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordEmbedding("x", "embed", time.Second, 1, nil)
		m.RecordSearch("cosine", time.Second, 1)
		m.RecordQuery("error")
	})
}
