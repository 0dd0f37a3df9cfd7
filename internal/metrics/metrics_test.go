package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDatasetLoad(t *testing.T) {
	RecordDatasetLoad(1200, 3, 2*time.Second)

	if got := testutil.ToFloat64(DatasetRows); got != 1200 {
		t.Errorf("DatasetRows = %v, want 1200", got)
	}
	if got := testutil.ToFloat64(DatasetSkippedRows); got != 3 {
		t.Errorf("DatasetSkippedRows = %v, want 3", got)
	}
	if got := testutil.ToFloat64(DatasetLoadDuration); got != 2 {
		t.Errorf("DatasetLoadDuration = %v, want 2", got)
	}
}

func TestRecordRender(t *testing.T) {
	ok := RendersTotal.WithLabelValues("kpis", "ok")
	failed := RendersTotal.WithLabelValues("rankings", "error")
	beforeOK, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordRender("kpis", 10, time.Millisecond, nil)
	RecordRender("rankings", 0, time.Millisecond, errors.New("bad n"))

	if got := testutil.ToFloat64(ok) - beforeOK; got != 1 {
		t.Errorf("ok renders increased by %v, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - beforeFailed; got != 1 {
		t.Errorf("failed renders increased by %v, want 1", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	c := HTTPRequestsTotal.WithLabelValues("GET", "/api/kpis", "200")
	before := testutil.ToFloat64(c)

	RecordHTTPRequest("GET", "/api/kpis", 200, 5*time.Millisecond)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("requests increased by %v, want 1", got)
	}
}
