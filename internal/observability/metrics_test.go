package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordDatagram("teamconnectd", "STATUS_UPDATE", "ok", 2*time.Millisecond)
	RecordDatagram("teamconnectd", "NET_ID_REQUEST", "error", 1*time.Millisecond)
	RecordMalformed("teamconnectd")
	RecordHTTPRequest("teamconnectd", "GET", "/health", 200, 12*time.Millisecond)
}
