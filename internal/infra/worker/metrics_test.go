package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordJobRun("success")
	m.RecordJobRun("success")
	m.RecordJobRun("failure")
	m.RecordJobDuration(12.5)
	m.RecordItems(10)
	m.RecordItems(7)
	m.RecordLastSuccess()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("failure")))
	assert.Equal(t, 17.0, testutil.ToFloat64(m.JobItemsTotal))
	assert.Greater(t, testutil.ToFloat64(m.LastSuccessTimestamp), 0.0)

	count, err := testutil.GatherAndCount(reg, "worker_cron_job_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_IncludesConfigMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordFallback("timezone")
	m.RecordLoadTimestamp()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("timezone")))
	count, err := testutil.GatherAndCount(reg, "worker_config_load_timestamp")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_DurationHistogram(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordJobDuration(3)
	m.RecordJobDuration(45)

	var metric dto.Metric
	require.NoError(t, m.JobDurationSeconds.Write(&metric))
	h := metric.GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 48.0, h.GetSampleSum(), 0.001)
}
