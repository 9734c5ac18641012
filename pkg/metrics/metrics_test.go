package metrics

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ssargent/gridstore/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIndependentRegistries(t *testing.T) {
	// a shared default registry would panic on the second registration
	m1 := NewMetrics()
	m2 := NewMetrics()
	assert.NotSame(t, m1.Registry(), m2.Registry())
}

func TestInstrumentBackend(t *testing.T) {
	m := NewMetrics()
	factory := m.InstrumentFactory(nil)

	b, err := factory(store.BackendConfig{Path: filepath.Join(t.TempDir(), "case.gs")})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Put([]byte("k"), []byte("value")))
	_, err = b.Get([]byte("k"))
	require.NoError(t, err)
	_, err = b.Get([]byte("missing"))
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	_, err = b.ListKeys(nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendOperationsTotal.WithLabelValues("put", statusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.backendOperationsTotal.WithLabelValues("get", statusSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.backendOperationsTotal.WithLabelValues("get", statusError)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.backendBytesWritten))
}

func TestRecordAPICallAndFiles(t *testing.T) {
	m := NewMetrics()
	m.RecordAPICall("cg_iRIC_Open", true)
	m.RecordAPICall("cg_iRIC_Open", false)
	m.FileOpened()
	m.FileOpened()
	m.FileClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("cg_iRIC_Open", statusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesOpen))
}

func TestInstrumentHandlerAndScrape(t *testing.T) {
	m := NewMetrics()
	h := m.InstrumentHandler("GET", "/api/v1/zones", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/api/v1/zones", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/zones", "404")))

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), "gridstore_http_requests_total")
}
