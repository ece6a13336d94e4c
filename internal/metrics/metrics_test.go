package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(mediaStoredTotal.WithLabelValues("flyer"))
	RecordMediaStored("flyer")
	assert.Equal(t, before+1, testutil.ToFloat64(mediaStoredTotal.WithLabelValues("flyer")))

	beforeErr := testutil.ToFloat64(mediaDeletedTotal.WithLabelValues("error"))
	RecordMediaDeleted(false)
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(mediaDeletedTotal.WithLabelValues("error")))

	beforeAuth := testutil.ToFloat64(authRejectedTotal.WithLabelValues("expired"))
	RecordAuthRejected("expired")
	assert.Equal(t, beforeAuth+1, testutil.ToFloat64(authRejectedTotal.WithLabelValues("expired")))

	RecordHTTPRequest(http.MethodGet, "GET /events/upcoming", "200", 15*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /events/upcoming", "200")), float64(1))
}

func TestHandler(t *testing.T) {
	RecordMediaStoreFailed("photo")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "eventboard_media_store_failed_total"))
}
