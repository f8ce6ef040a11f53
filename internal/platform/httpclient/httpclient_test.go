package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDoJSON_RequiresAbsoluteURL(t *testing.T) {
	c := New(time.Second)

	if err := c.DoJSON(context.Background(), http.MethodGet, "", nil, nil, nil); err == nil {
		t.Fatal("empty url must fail")
	}
	if err := c.DoJSON(context.Background(), http.MethodGet, "/solo-path", nil, nil, nil); err == nil {
		t.Fatal("relative path must fail")
	}
}

func TestDoJSON_RoundtripAndHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"queued"}`))
		default:
			http.Error(w, "relay down", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := New(time.Second)

	var out struct {
		Status string `json:"status"`
	}
	if err := c.DoJSON(context.Background(), http.MethodPost, srv.URL+"/ok", nil, map[string]string{"to": "a@b.cl"}, &out); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if out.Status != "queued" {
		t.Fatalf("status = %q", out.Status)
	}

	err := c.DoJSON(context.Background(), http.MethodPost, srv.URL+"/fail", nil, nil, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("want *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", httpErr.StatusCode)
	}
	if httpErr.Body != "relay down" {
		t.Fatalf("body = %q", httpErr.Body)
	}
}
