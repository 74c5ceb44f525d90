package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/cfg"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

func newTestService(addr string, maxRetries int) *EmbeddingService {
	return NewEmbeddingService(&cfg.EmbeddingCfg{
		Addr:       addr,
		Model:      "test-model",
		ApiKey:     "secret",
		MaxRetries: maxRetries,
		Timeout:    5 * time.Second,
	}, nopLogger{})
}

func TestEmbedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %s, want /v1/embeddings", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", got)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %s, want test-model", req.Model)
		}
		if len(req.Input) != 1 || req.Input[0] != "наушники. bluetooth" {
			t.Errorf("input = %v", req.Input)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 1)

	vector, err := svc.EmbedText(context.Background(), "наушники. bluetooth")
	if err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("vector size = %d, want 3", len(vector))
	}
}

func TestEmbedTextRetriesServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.5}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 3)

	vector, err := svc.EmbedText(context.Background(), "text")
	if err != nil {
		t.Fatalf("EmbedText() error = %v after %d attempts", err, attempts)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
	if len(vector) != 1 {
		t.Fatalf("vector size = %d, want 1", len(vector))
	}
}

func TestEmbedTextAllAttemptsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 2)

	_, err := svc.EmbedText(context.Background(), "text")
	if !errors.Is(err, e.ErrEmbedding) {
		t.Fatalf("EmbedText() error = %v, want ErrEmbedding", err)
	}
}

func TestEmbedTextEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 1)

	_, err := svc.EmbedText(context.Background(), "text")
	if !errors.Is(err, e.ErrEmbedding) {
		t.Fatalf("EmbedText() error = %v, want ErrEmbedding", err)
	}
}

func TestEmbedTextContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EmbedText(ctx, "text")
	if err == nil {
		t.Fatal("EmbedText() = nil error with cancelled context")
	}
}
