package metrics_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/local"
	"github.com/jmgilman/go/storage/metrics"
)

func newInstrumented(t *testing.T) (core.Adapter, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return metrics.Wrap(local.NewMemory(), metrics.New(reg), "memory"), reg
}

func counter(t *testing.T, reg *prometheus.Registry, op, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "storage_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["operation"] == op && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestWrap_RecordsResults(t *testing.T) {
	ctx := context.Background()
	a, reg := newInstrumented(t)

	_, err := a.Write(ctx, "test/1.txt", []byte("test"), core.Options{})
	require.NoError(t, err)

	_, found, err := a.Read(ctx, "test/1.txt")
	require.NoError(t, err)
	require.True(t, found)

	_, found, err = a.Read(ctx, "missing.txt")
	require.NoError(t, err)
	require.False(t, found)

	assert.False(t, a.Delete(ctx, "test/"))

	assert.Equal(t, float64(1), counter(t, reg, "write", metrics.ResultSuccess))
	assert.Equal(t, float64(1), counter(t, reg, "read", metrics.ResultSuccess))
	assert.Equal(t, float64(1), counter(t, reg, "read", metrics.ResultNotFound))
	assert.Equal(t, float64(1), counter(t, reg, "delete", metrics.ResultFalse))
}

func TestNew_SharesRegistry(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	var first, second *metrics.Recorder
	require.NotPanics(t, func() {
		first = metrics.New(reg)
		second = metrics.New(reg)
	})

	a := metrics.Wrap(local.NewMemory(), first, "memory")
	b := metrics.Wrap(local.NewMemory(), second, "memory")
	_, err := a.Write(ctx, "a.txt", []byte("a"), core.Options{})
	require.NoError(t, err)
	_, err = b.Write(ctx, "b.txt", []byte("b"), core.Options{})
	require.NoError(t, err)

	assert.Equal(t, float64(2), counter(t, reg, "write", metrics.ResultSuccess))
}

func TestNew_DefaultRegistryTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New(nil)
		metrics.New(nil)
	})
}

func TestWrap_CountsBytes(t *testing.T) {
	ctx := context.Background()
	a, reg := newInstrumented(t)

	_, err := a.Write(ctx, "a.txt", []byte("hello"), core.Options{})
	require.NoError(t, err)

	stream, found, err := a.ReadStream(ctx, "a.txt")
	require.NoError(t, err)
	require.True(t, found)
	_, err = core.ReadAll(stream)
	require.NoError(t, err)

	expected := `
# HELP storage_bytes_read_total Total bytes returned by read operations
# TYPE storage_bytes_read_total counter
storage_bytes_read_total{backend="memory"} 5
# HELP storage_bytes_written_total Total bytes stored by write operations
# TYPE storage_bytes_written_total counter
storage_bytes_written_total{backend="memory"} 5
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"storage_bytes_read_total", "storage_bytes_written_total")
	assert.NoError(t, err)
}

func TestWrap_Delegates(t *testing.T) {
	a, _ := newInstrumented(t)

	assert.Equal(t, core.KindMemory, a.Kind())
	assert.Equal(t, "", a.PathPrefix())
}
