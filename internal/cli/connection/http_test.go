package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"localhost:9121", "http://localhost:9121"},
		{"http://localhost:9121", "http://localhost:9121"},
		{"https://keyline.example.com", "https://keyline.example.com"},
	}

	for _, tt := range tests {
		client := NewHTTPClient(tt.server)
		if client.BaseURL() != tt.want {
			t.Errorf("NewHTTPClient(%q).BaseURL() = %q, want %q", tt.server, client.BaseURL(), tt.want)
		}
	}
}

func TestHTTPClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %q, want GET", r.Method)
		}
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "keyline-cli/") {
			t.Errorf("User-Agent = %q, want keyline-cli prefix", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"code":    "OK",
			"message": "Success",
			"data":    map[string]string{"status": "healthy"},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	resp, err := client.Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var data struct {
		Status string `json:"status"`
	}
	if err := ParseResponse(resp, &data); err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if data.Status != "healthy" {
		t.Errorf("status = %q, want %q", data.Status, "healthy")
	}
}

func TestHTTPClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		var body struct {
			DryRun bool `json:"dry_run"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if !body.DryRun {
			t.Error("dry_run should be true")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"code":    "OK",
			"message": "Success",
			"data":    map[string]any{"purged_keys": 0, "dry_run": true},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	resp, err := client.Post(context.Background(), "/purge", map[string]any{"dry_run": true})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	var data struct {
		PurgedKeys int  `json:"purged_keys"`
		DryRun     bool `json:"dry_run"`
	}
	if err := ParseResponse(resp, &data); err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if !data.DryRun {
		t.Error("dry_run should round trip as true")
	}
}

func TestHTTPClient_Post_NoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			t.Errorf("Content-Type = %q, want empty for bodyless POST", ct)
		}
		json.NewEncoder(w).Encode(map[string]any{"code": "OK", "message": "Success"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	resp, err := client.Post(context.Background(), "/purge", nil)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if err := ParseResponse(resp, nil); err != nil {
		t.Errorf("ParseResponse failed: %v", err)
	}
}

func TestParseResponse_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"code":    "KL-SYS-5030",
			"message": "store not attached",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	resp, err := client.Get(context.Background(), "/ready")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	err = ParseResponse(resp, nil)
	if err == nil {
		t.Fatal("ParseResponse should surface the error envelope")
	}
	if !strings.Contains(err.Error(), "KL-SYS-5030") || !strings.Contains(err.Error(), "store not attached") {
		t.Errorf("error = %q, want code and message", err)
	}
}

func TestParseResponse_ErrorWithoutEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	resp, err := client.Get(context.Background(), "/nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	err = ParseResponse(resp, nil)
	if err == nil {
		t.Fatal("ParseResponse should fail on 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want status code", err)
	}
}

func TestParseResponse_EmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": "OK", "message": "Success"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	resp, err := client.Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var data struct {
		Status string `json:"status"`
	}
	if err := ParseResponse(resp, &data); err != nil {
		t.Errorf("ParseResponse with missing data should not error: %v", err)
	}
	if data.Status != "" {
		t.Errorf("status = %q, want empty", data.Status)
	}
}
