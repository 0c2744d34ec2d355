package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Handler(t *testing.T) {
	p := Init(BuildInfo{Commit: "abc123"})
	p.ObserveCatalog(15, 6, 2)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "storemap_test_total", Help: "test"})
	p.Registerer().MustRegister(counter)
	counter.Add(3)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `storemap_build_info{commit="abc123",version="dev"} 1`)
	assert.Contains(t, string(body), `storemap_catalog_records{kind="rejected"} 2`)
	assert.Contains(t, string(body), "storemap_test_total 3")
	assert.Contains(t, string(body), "go_goroutines")
	assert.Equal(t, 15.0, testutil.ToFloat64(p.catalog.WithLabelValues("stores")))
}
