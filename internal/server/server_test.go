package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/genui-engine/genui/internal/ai"
	"github.com/genui-engine/genui/internal/config"
	"github.com/genui-engine/genui/internal/generate"
	"github.com/genui-engine/genui/internal/history"
	"github.com/genui-engine/genui/internal/server"
)

type stubProvider struct {
	reply string
	err   error
}

func (s *stubProvider) Complete(context.Context, string, []ai.Message) (string, error) {
	return s.reply, s.err
}

func (s *stubProvider) ListModels(context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"stub-model"}, nil
}

func newTestRouter(t *testing.T, p ai.Provider) (*gin.Engine, history.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	store, err := history.NewFileStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	cfg := config.Config{DefaultProvider: ai.FamilyOpenAI, DefaultModel: "gpt-4o", LogDir: dir}
	svc := generate.NewService("", func(ai.ProviderConfig) (ai.Provider, error) { return p, nil })
	return server.New(cfg, svc, store).Router(), store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return w, out
}

func TestGenerateHistoryRoundTrip(t *testing.T) {
	const html = "<button class='blue'>Click</button>"
	r, _ := newTestRouter(t, &stubProvider{reply: html})

	w, out := doJSON(t, r, "POST", "/generate", `{"prompt":"a blue button"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if out["html"] != html {
		t.Fatalf("expected verbatim HTML, got %q", out["html"])
	}
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatal("response should carry the record id")
	}

	w, out = doJSON(t, r, "GET", "/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	records, _ := out["records"].([]any)
	if len(records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(records))
	}
	rec, _ := records[0].(map[string]any)
	if rec["id"] != id || rec["prompt"] != "a blue button" {
		t.Fatalf("unexpected record: %v", rec)
	}

	w, out = doJSON(t, r, "GET", "/history/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if out["html"] != html {
		t.Fatalf("history entry should return the same HTML, got %q", out["html"])
	}
}

func TestGenerateValidation(t *testing.T) {
	r, store := newTestRouter(t, &stubProvider{reply: "<p>x</p>"})

	w, out := doJSON(t, r, "POST", "/generate", `{"context":"<p>old</p>"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if out["kind"] != "validation" {
		t.Fatalf("expected validation kind, got %v", out["kind"])
	}
	assertHistoryEmpty(t, store)
}

func TestGenerateProviderUnreachable(t *testing.T) {
	r, store := newTestRouter(t, &stubProvider{err: fmt.Errorf("%w: connection refused", ai.ErrUnreachable)})

	w, out := doJSON(t, r, "POST", "/generate", `{"prompt":"a blue button"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if out["kind"] != "provider_unreachable" {
		t.Fatalf("expected provider_unreachable kind, got %v", out["kind"])
	}
	assertHistoryEmpty(t, store)
}

func TestGenerateAuthError(t *testing.T) {
	r, store := newTestRouter(t, &stubProvider{err: fmt.Errorf("%w: status 401", ai.ErrAuth)})

	w, out := doJSON(t, r, "POST", "/generate", `{"prompt":"a blue button"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if out["kind"] != "provider_auth" {
		t.Fatalf("expected provider_auth kind, got %v", out["kind"])
	}
	assertHistoryEmpty(t, store)
}

func TestGenerateEmptyCompletion(t *testing.T) {
	r, store := newTestRouter(t, &stubProvider{reply: ""})

	w, out := doJSON(t, r, "POST", "/generate", `{"prompt":"a blue button"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if out["kind"] != "extraction_failed" {
		t.Fatalf("expected extraction_failed kind, got %v", out["kind"])
	}
	assertHistoryEmpty(t, store)
}

func TestModels(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{})

	w, out := doJSON(t, r, "GET", "/models?provider=openai", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	models, _ := out["models"].([]any)
	if len(models) != 1 || models[0] != "stub-model" {
		t.Fatalf("unexpected models: %v", out["models"])
	}
}

func TestHistoryEmpty(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{})

	w, out := doJSON(t, r, "GET", "/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	records, ok := out["records"].([]any)
	if !ok || len(records) != 0 {
		t.Fatalf("expected empty records array, got %v", out["records"])
	}
}

func TestHistoryEntryNotFound(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{})

	w, out := doJSON(t, r, "GET", "/history/ui_19700101_000000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if out["kind"] != "not_found" {
		t.Fatalf("expected not_found kind, got %v", out["kind"])
	}
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{})

	w, out := doJSON(t, r, "GET", "/ping", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if out["status"] != "ok" {
		t.Fatalf("unexpected ping body: %v", out)
	}
}

func assertHistoryEmpty(t *testing.T, store history.Store) {
	t.Helper()
	records, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("no history record should be created, got %d", len(records))
	}
}
