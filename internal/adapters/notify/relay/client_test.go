package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSend_PostsPayload(t *testing.T) {
	var got sendPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Send(context.Background(), "ana@example.com", "Hola", "cuerpo"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got.To != "ana@example.com" || got.Subject != "Hola" || got.Text != "cuerpo" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestSend_NonOKIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, 2*time.Second)
	if err := c.Send(context.Background(), "ana@example.com", "x", "y"); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestSend_RequiresRecipient(t *testing.T) {
	c, _ := New("http://localhost:1", 2*time.Second)
	if err := c.Send(context.Background(), "  ", "x", "y"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New("", time.Second); err == nil {
		t.Fatal("expected error for empty url")
	}
}
