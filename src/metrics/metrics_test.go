package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/healthz", 200, 3*time.Millisecond)
	RecordCollaboratorCall("generation", true, 120*time.Millisecond)
	RecordApproval("approved")

	before := testutil.ToFloat64(interactions.WithLabelValues("post", "queued"))
	RecordInteraction("post", "queued")
	assert.Equal(t, before+1, testutil.ToFloat64(interactions.WithLabelValues("post", "queued")))
}
