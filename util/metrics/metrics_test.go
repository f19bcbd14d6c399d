package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLoginAttemptsByResult(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues("failure"))

	LoginAttempts.WithLabelValues("failure").Inc()
	LoginAttempts.WithLabelValues("success").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttempts.WithLabelValues("failure")))
}

func TestCollectorsAreRegistered(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/", "200").Inc()
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestsTotal))
}
