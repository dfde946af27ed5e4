package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("labtriage", reg)

	c.ObserveTriage("composed", 120*time.Millisecond)
	c.ObserveTriage("composed", 80*time.Millisecond)
	c.ObserveTriage("degraded", 200*time.Millisecond)
	c.ObserveExtraction("success", "")
	c.ObserveExtraction("failure", "malformed_output")
	c.ObserveInference(time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.triageRequestsTotal.WithLabelValues("composed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.triageRequestsTotal.WithLabelValues("degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.extractionsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.extractionsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.extractionFailures.WithLabelValues("malformed_output")))

	// A success never increments the failure counter.
	assert.Equal(t, 0.0, testutil.ToFloat64(c.extractionFailures.WithLabelValues("unavailable")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewCollector_IndependentRegistries(t *testing.T) {
	// Two collectors on separate registries must not collide.
	a := NewCollector("labtriage", prometheus.NewRegistry())
	b := NewCollector("labtriage", prometheus.NewRegistry())
	a.ObserveTriage("composed", time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.triageRequestsTotal.WithLabelValues("composed")))
}
