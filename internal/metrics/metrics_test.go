package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRequest("/api/chat", "POST", 200, 120*time.Millisecond)
	m.ObserveRequest("/api/chat", "POST", 200, 80*time.Millisecond)
	m.ObserveRequest("/api/chat", "POST", 502, time.Second)

	require.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/chat", "POST", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/chat", "POST", "502")))
	require.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	m.ObserveRequest("/api/survey", "GET", 200, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `charchat_requests_total{method="GET",route="/api/survey",status="200"} 1`)
	require.Contains(t, string(body), "charchat_request_duration_seconds_bucket")
}
