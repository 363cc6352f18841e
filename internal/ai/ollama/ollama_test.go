package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/genui-engine/genui/internal/ai"
)

func TestCompleteChat(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "<div>hi</div>\n"},
		})
	}))
	defer ts.Close()

	c := New(ts.URL)
	out, err := c.Complete(context.Background(), "llama3", []ai.Message{{Role: ai.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if out != "<div>hi</div>" {
		t.Fatalf("expected trimmed content, got %q", out)
	}
	if gotBody["model"] != "llama3" {
		t.Fatalf("request payload wrong: %+v", gotBody)
	}
	if msgs, _ := gotBody["messages"].([]any); len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %v", gotBody["messages"])
	}
	if stream, ok := gotBody["stream"].(bool); !ok || stream {
		t.Fatal("streaming must be explicitly disabled")
	}
}

func TestCompleteBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(ts.URL)
	if _, err := c.Complete(context.Background(), "llama3", nil); !errors.Is(err, ai.ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestCompleteUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	c := New(ts.URL)
	if _, err := c.Complete(context.Background(), "llama3", nil); !errors.Is(err, ai.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "llama3:latest"}, {"name": "mistral:7b"}},
		})
	}))
	defer ts.Close()

	c := New(ts.URL)
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list models failed: %v", err)
	}
	if len(models) != 2 || models[0] != "llama3:latest" {
		t.Fatalf("unexpected models: %v", models)
	}
}

func TestDefaultHost(t *testing.T) {
	c := New("")
	if c.Host != "http://localhost:11434" {
		t.Fatalf("unexpected default host %q", c.Host)
	}
}
