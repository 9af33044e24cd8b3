package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testEmail() EmailInput {
	return EmailInput{
		MessageID: "m1",
		Subject:   "Hi",
		From:      "a@x.com",
		To:        "b@x.com",
		Date:      "2024-01-01",
		TextBody:  "Let's meet Friday.",
	}
}

// newStubServer returns a chat-completions endpoint whose single choice
// contains the given content string
func newStubServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Error("expected structured-output response_format")
		}
		if len(req.Messages) == 0 || !strings.Contains(req.Messages[0].Content, "Generate a summary and labels") {
			t.Error("prompt missing summary instruction")
		}

		resp := map[string]interface{}{
			"id": "chatcmpl-test",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(baseURL string) *Client {
	client := NewClient(5 * time.Second)
	client.Configure("custom", "test-key", "gpt-4o-2024-08-06", baseURL)
	return client
}

func TestGenerateSummary(t *testing.T) {
	server := newStubServer(t, `{"summary":"Meeting proposed for Friday.","labels":["scheduling"]}`)
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.GenerateSummary(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if result.Summary != "Meeting proposed for Friday." {
		t.Errorf("Summary = %q, want %q", result.Summary, "Meeting proposed for Friday.")
	}
	if len(result.Labels) != 1 || result.Labels[0] != "scheduling" {
		t.Errorf("Labels = %v, want [scheduling]", result.Labels)
	}
}

func TestGenerateSummary_AttachmentsInPrompt(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) > 0 {
			prompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-test","choices":[{"message":{"role":"assistant","content":"{\"summary\":\"Has an attachment.\",\"labels\":[]}"}}]}`))
	}))
	defer server.Close()

	email := testEmail()
	email.Attachments = json.RawMessage(`[{"Name":"notes.txt","ContentType":"text/plain"}]`)

	client := newTestClient(server.URL)
	if _, err := client.GenerateSummary(context.Background(), email); err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if !strings.Contains(prompt, "notes.txt") {
		t.Errorf("prompt %q does not carry the attachment descriptors", prompt)
	}

	// Without attachments the prompt must not grow an empty Attachments field
	if _, err := client.GenerateSummary(context.Background(), testEmail()); err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if strings.Contains(prompt, "Attachments") {
		t.Errorf("prompt %q carries Attachments for a delivery without any", prompt)
	}
}

func TestGenerateSummary_ClampsLabels(t *testing.T) {
	server := newStubServer(t, `{"summary":"Busy email.","labels":["a","b","c","d"]}`)
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.GenerateSummary(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if len(result.Labels) != MaxLabels {
		t.Errorf("len(Labels) = %d, want %d", len(result.Labels), MaxLabels)
	}
}

func TestGenerateSummary_NilLabelsBecomeEmpty(t *testing.T) {
	server := newStubServer(t, `{"summary":"Plain email.","labels":null}`)
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.GenerateSummary(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if result.Labels == nil || len(result.Labels) != 0 {
		t.Errorf("Labels = %v, want empty non-nil slice", result.Labels)
	}
}

func TestGenerateSummary_NotConfigured(t *testing.T) {
	client := NewClient(time.Second)
	if _, err := client.GenerateSummary(context.Background(), testEmail()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}

	// custom provider without a base URL must also refuse to call out
	client = NewClient(time.Second)
	client.Configure("custom", "test-key", "", "")
	if _, err := client.GenerateSummary(context.Background(), testEmail()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestGenerateSummary_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.GenerateSummary(context.Background(), testEmail()); !errors.Is(err, ErrAPICallFailed) {
		t.Errorf("error = %v, want ErrAPICallFailed", err)
	}
}

func TestGenerateSummary_MalformedContent(t *testing.T) {
	server := newStubServer(t, `not json at all`)
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.GenerateSummary(context.Background(), testEmail()); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestGenerateSummary_EmptySummaryRejected(t *testing.T) {
	server := newStubServer(t, `{"summary":"","labels":["x"]}`)
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.GenerateSummary(context.Background(), testEmail()); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestGenerateSummary_ContextCancelled(t *testing.T) {
	server := newStubServer(t, `{"summary":"Too late.","labels":[]}`)
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.GenerateSummary(ctx, testEmail()); !errors.Is(err, ErrAPICallFailed) {
		t.Errorf("error = %v, want ErrAPICallFailed wrapping context cancellation", err)
	}
}

func TestGenerateSummary_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-test","choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.GenerateSummary(context.Background(), testEmail()); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}
