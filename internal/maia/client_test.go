package maia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestBestMove(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maia" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("fen") == "" || r.URL.Query().Get("elo") != "1400" {
			http.Error(w, `{"error":"bad params"}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"move":"e2e4"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	mv, err := c.BestMove(context.Background(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 1400)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if mv != "e2e4" {
		t.Fatalf("move = %q", mv)
	}
}

func TestErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"no legal moves"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.BestMove(context.Background(), "8/8/8/8/8/8/8/8 w - - 0 1", 1200); err == nil {
		t.Fatalf("expected error for error payload")
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"move":"g8f6"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3))
	mv, err := c.BestMove(context.Background(), "some-fen", 1500)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if mv != "g8f6" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("move=%q calls=%d", mv, calls)
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"bad fen"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3))
	if _, err := c.BestMove(context.Background(), "junk", 1500); err == nil {
		t.Fatalf("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("4xx must not be retried, calls=%d", calls)
	}
}

func TestMalformedMoveRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"move":"castle kingside"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(2*time.Second))
	if _, err := c.BestMove(context.Background(), "some-fen", 1500); err == nil {
		t.Fatalf("expected error for malformed move code")
	}
}

func TestInvalidInputsShortCircuit(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	if _, err := c.BestMove(context.Background(), "", 1500); err == nil {
		t.Fatalf("empty fen must fail")
	}
	if _, err := c.BestMove(context.Background(), "fen", 0); err == nil {
		t.Fatalf("non-positive elo must fail")
	}
}

func TestValidMoveCode(t *testing.T) {
	good := []string{"e2e4", "g8f6", "e7e8q", "a7a8n"}
	bad := []string{"", "e2", "e2e", "e2e9", "i2e4", "e7e8x", "e2e4e5"}
	for _, m := range good {
		if !ValidMoveCode(m) {
			t.Fatalf("%q should be valid", m)
		}
	}
	for _, m := range bad {
		if ValidMoveCode(m) {
			t.Fatalf("%q should be invalid", m)
		}
	}
}
