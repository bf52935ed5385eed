package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"showscout/internal/config"
	"showscout/internal/services/llm"
)

func completionBody(content string) string {
	encoded, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(encoded)
}

func TestExtractContactParsesGuess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		w.Write([]byte(completionBody(`{"email":"May@HiveTalk.example.com","confidence":"HIGH","quote":"Contact may@hivetalk.example.com for guest pitches."}`)))
	}))
	defer server.Close()

	client := llm.NewClient(config.LLM{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})
	guess, err := client.ExtractContact(context.Background(), "Hive Talk", "May", "Contact may@hivetalk.example.com for guest pitches.")
	if err != nil {
		t.Fatalf("ExtractContact: %v", err)
	}
	if guess.Email != "may@hivetalk.example.com" {
		t.Fatalf("expected lowercased email, got %q", guess.Email)
	}
	if guess.Confidence != "high" {
		t.Fatalf("expected normalized confidence, got %q", guess.Confidence)
	}
}

func TestExtractContactEmptyEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(`{"email":""}`)))
	}))
	defer server.Close()

	client := llm.NewClient(config.LLM{APIKey: "test-key", BaseURL: server.URL})
	guess, err := client.ExtractContact(context.Background(), "Hive Talk", "", "no contact info here")
	if err != nil {
		t.Fatalf("ExtractContact: %v", err)
	}
	if guess.Email != "" {
		t.Fatalf("expected empty email, got %q", guess.Email)
	}
}

func TestExtractContactRequiresAPIKey(t *testing.T) {
	client := llm.NewClient(config.LLM{})
	if _, err := client.ExtractContact(context.Background(), "Hive Talk", "", "text"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestCompleteJSONRetriesOnServerError(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionBody(`{"ok":true}`)))
	}))
	defer server.Close()

	client := llm.NewClient(
		config.LLM{APIKey: "test-key", BaseURL: server.URL},
		llm.WithRetryMaxAttempts(3),
		llm.WithSleeper(func(time.Duration) {}),
	)
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content: %q", content)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestCompleteJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := llm.NewClient(
		config.LLM{APIKey: "test-key", BaseURL: server.URL},
		llm.WithRetryMaxAttempts(3),
		llm.WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestDecodeLLMJSONHandlesCodeFences(t *testing.T) {
	var parsed struct {
		Email string `json:"email"`
	}
	content := "```json\n{\"email\":\"may@example.com\"}\n```"
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON: %v", err)
	}
	if parsed.Email != "may@example.com" {
		t.Fatalf("unexpected email: %q", parsed.Email)
	}
}

func TestDecodeLLMJSONExtractsEmbeddedObject(t *testing.T) {
	var parsed struct {
		Email string `json:"email"`
	}
	content := `Here is the answer: {"email":"may@example.com"} hope that helps`
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON: %v", err)
	}
	if parsed.Email != "may@example.com" {
		t.Fatalf("unexpected email: %q", parsed.Email)
	}
}
