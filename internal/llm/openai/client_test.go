package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"applygen-backend/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-4o"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewClient("key", " "); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestCompleteSendsPersonaAndJSONFormat(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	var mu sync.Mutex
	var lastBody map[string]any
	var lastAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		mu.Lock()
		lastBody = payload
		lastAuth = r.Header.Get("Authorization")
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":" {\"summary\":\"x\"} "}}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, err := NewClient("test-key", "gpt-4o")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.Request{
		Purpose: llm.PurposeResume,
		System:  llm.ResumePersona,
		Prompt:  "write it",
		JSON:    true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"summary":"x"}` {
		t.Fatalf("unexpected content %q", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if lastAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", lastAuth)
	}
	format, ok := lastBody["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", lastBody["response_format"])
	}
	if _, ok := lastBody["temperature"]; !ok {
		t.Fatalf("expected temperature for gpt-4o")
	}
	messages, _ := lastBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	first, _ := messages[0].(map[string]any)
	if first["role"] != "system" || first["content"] != llm.ResumePersona {
		t.Fatalf("unexpected system message %v", first)
	}
}

func TestCompleteFreeTextOmitsFormatAndTemperatureForGPT5(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	var lastBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		_ = json.NewDecoder(r.Body).Decode(&lastBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Dear Hiring Manager,"}}]}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, err := NewClient("k", "gpt-5-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "letter"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := lastBody["response_format"]; ok {
		t.Fatalf("expected no response_format for free text")
	}
	if _, ok := lastBody["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted for gpt-5 models")
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`, wantErr: "openai http status 429: slow down (rate_limit)"},
		{name: "non json error", status: http.StatusBadGateway, body: `bad gateway`, wantErr: "openai http status 502"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "missing choices"},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, wantErr: "empty content"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			oldURL := apiURL
			t.Cleanup(func() { apiURL = oldURL })
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()
			apiURL = server.URL

			client, err := NewClient("k", "gpt-4o")
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			_, err = client.Complete(context.Background(), llm.Request{Prompt: "p"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
