package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewWiresCSVBackendWithoutCredential(t *testing.T) {
	clearConfigEnv(t)
	gin.SetMode(gin.TestMode)
	t.Setenv("LOG_MODE", "development")
	t.Setenv("STORAGE_BACKEND", "csv")
	t.Setenv("CSV_PATH", filepath.Join(t.TempDir(), "submissions.csv"))

	a, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Clients.Completer != nil {
		t.Fatalf("expected fallback-only generator without credential")
	}

	body := `{"rating":5,"review":"Great service!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: want=%d got=%d body=%s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	tbl, err := a.Backend.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if tbl.Len() != 1 || tbl.Rows[0].Rating != "5" {
		t.Fatalf("stored rows: %+v", tbl.Rows)
	}
}

func TestNewRejectsUnknownProviderWithKey(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CSV_PATH", filepath.Join(t.TempDir(), "submissions.csv"))
	t.Setenv("LLM_PROVIDER", "mystery")
	t.Setenv("LLM_API_KEY", "k")

	if _, err := New(context.Background()); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CSV_PATH", filepath.Join(t.TempDir(), "submissions.csv"))
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")

	if _, err := New(context.Background()); err == nil {
		t.Fatalf("expected error when redis cache has no address")
	}
}
