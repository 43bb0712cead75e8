package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTogetherComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "{\"steps\": []}"}}], "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}}`))
	}))
	defer ts.Close()

	c := NewTogetherClient("test-key", "")
	c.endpoint = ts.URL

	out, err := c.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"steps": []}` {
		t.Fatalf("content: got %q", out)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header: got %q", gotAuth)
	}
	if gotBody["model"] != DefaultTogetherModel {
		t.Fatalf("model: got %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(2048) {
		t.Fatalf("max_tokens: got %v", gotBody["max_tokens"])
	}
	if gotBody["temperature"] != 0.7 || gotBody["top_p"] != 0.9 {
		t.Fatalf("sampling params: temp=%v top_p=%v", gotBody["temperature"], gotBody["top_p"])
	}
	msgs, ok := gotBody["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages: %v", gotBody["messages"])
	}
}

func TestTogetherCompleteHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewTogetherClient("bad-key", "some-model")
	c.endpoint = ts.URL

	_, err := c.Complete(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error should carry status: %v", err)
	}
}

func TestTogetherCompleteNoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer ts.Close()

	c := NewTogetherClient("key", "m")
	c.endpoint = ts.URL

	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestTogetherModelDefault(t *testing.T) {
	if got := NewTogetherClient("k", "").Model(); got != DefaultTogetherModel {
		t.Fatalf("default model: got %q", got)
	}
	if got := NewTogetherClient("k", "custom").Model(); got != "custom" {
		t.Fatalf("custom model: got %q", got)
	}
}
