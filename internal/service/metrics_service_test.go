package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest("GET", "/api/session/:id", 200, 15*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveLLMCall("openai", "accommodations", 2*time.Second)
	m.RecordLLMOutcome("openai", "accommodations", "success")
	m.RecordSessionCreated("hero")
	m.RecordCommentAdded()
	m.RecordApprovalChange(true)
	m.RecordApprovalChange(false)
	m.RecordAutismProfileCreated("hero")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/api/session/:id", "200")))
	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(m.cacheHitRatio), 0.0001)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmOutcomes.WithLabelValues("openai", "accommodations", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsCreated.WithLabelValues("hero")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.approvalChanges.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.profilesCreated.WithLabelValues("hero")))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["llm_request_duration_seconds"])
	assert.True(t, names["session_comments_added_total"])
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.RecordLLMOutcome("p", "q", "success")
		m.RecordSessionCreated("free")
		m.RecordCommentAdded()
		m.RecordApprovalChange(true)
		m.RecordAutismProfileCreated("standard")
	})
}
