package docpipe

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func TestNewRequiresExecutor(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected an error without executors")
	}
	if !strings.Contains(err.Error(), "executor") {
		t.Errorf("err = %v", err)
	}
}

func TestNewRemoteOnly(t *testing.T) {
	f := newFakeServer(t)
	c := newTestClient(t, f)

	if c.HasDirect() {
		t.Error("HasDirect() = true for a remote-only client")
	}
	if err := c.Close(context.Background()); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewInvalidServerURL(t *testing.T) {
	_, err := New(context.Background(), WithServer("://bad", "app", "key"))
	if err == nil {
		t.Fatal("expected an error for an invalid base url")
	}
}

func TestMetricsRecorded(t *testing.T) {
	f := newFakeServer(t)
	reg := prometheus.NewRegistry()
	c := newTestClient(t, f, WithMetrics(reg), WithLogger(zap.NewNop()))

	if _, err := c.Query("Song").Exists("title").Results(context.Background()); err != nil {
		t.Fatalf("Results: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	if !found["docpipe_client_operations_total"] {
		t.Errorf("operations counter missing, got %v", found)
	}
	if !found["docpipe_client_operation_duration_seconds"] {
		t.Errorf("duration histogram missing, got %v", found)
	}
}

func TestMetricsSharedRegistry(t *testing.T) {
	f := newFakeServer(t)
	reg := prometheus.NewRegistry()

	// Two clients on one registry must reuse the collectors instead of
	// failing with a duplicate registration.
	newTestClient(t, f, WithMetrics(reg))
	newTestClient(t, f, WithMetrics(reg))
}
