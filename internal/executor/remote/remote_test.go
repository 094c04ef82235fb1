package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cloudpeak/docpipe/internal/domain"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

// newTestServer routes aggregate requests the way a Parse-compatible
// server does and records what arrives.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Executor) {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/aggregate/{className}", handler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	exec, err := New(Config{
		BaseURL:   srv.URL,
		AppID:     "app-id",
		MasterKey: "master-key",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, exec
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestAggregate(t *testing.T) {
	var (
		gotClass string
		gotBody  map[string]any
		gotAppID string
		gotKey   string
		gotReqID string
	)
	_, exec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotClass = chi.URLParam(r, "className")
		gotAppID = r.Header.Get("X-Parse-Application-Id")
		gotKey = r.Header.Get("X-Parse-Master-Key")
		gotReqID = r.Header.Get("X-Request-Id")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"objectId": "a", "count": 2}},
		})
	})

	stages := []pipeline.Stage{pipeline.Match(map[string]any{"genre": "jazz"})}
	results, err := exec.Aggregate(context.Background(), "Song", stages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotClass != "Song" {
		t.Errorf("class = %q", gotClass)
	}
	if gotAppID != "app-id" || gotKey != "master-key" {
		t.Errorf("auth headers = %q/%q", gotAppID, gotKey)
	}
	if gotReqID == "" {
		t.Error("request id header missing")
	}

	sent, ok := gotBody["pipeline"].([]any)
	if !ok || len(sent) != 1 {
		t.Fatalf("pipeline = %v", gotBody["pipeline"])
	}
	match := sent[0].(map[string]any)["$match"].(map[string]any)
	if match["genre"] != "jazz" {
		t.Errorf("match = %v", match)
	}

	if len(results) != 1 || results[0]["objectId"] != "a" {
		t.Errorf("results = %v", results)
	}
}

func TestAggregate_APIError(t *testing.T) {
	_, exec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":  102,
			"error": "invalid query",
		})
	})

	_, err := exec.Aggregate(context.Background(), "Song", nil)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != 102 || apiErr.Message != "invalid query" {
		t.Errorf("api error = %+v", apiErr)
	}
}

func TestAggregate_NonJSONError(t *testing.T) {
	_, exec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := exec.Aggregate(context.Background(), "Song", nil)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != http.StatusBadGateway {
		t.Errorf("code = %d", apiErr.Code)
	}
}

func TestAggregate_EmptyResults(t *testing.T) {
	_, exec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	results, err := exec.Aggregate(context.Background(), "Song", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v", results)
	}
}

func TestAggregate_ContextCancelled(t *testing.T) {
	_, exec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exec.Aggregate(ctx, "Song", nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}
