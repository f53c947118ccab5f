package overview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agencypulse/reporting-backend/internal/dashboard"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testPayload() *dashboard.Payload {
	up := 10.0
	return &dashboard.Payload{
		SubjectID: "client-1",
		StartDate: "2026-08-01",
		EndDate:   "2026-08-31",
		KPIs: []dashboard.KPIValue{
			{Key: "users", Label: "Users", Source: enums.KPISourceWebAnalytics, Value: 1200, ChangePct: &up},
			{Key: "avg_keyword_rank", Label: "Average Keyword Rank", Source: enums.KPISourceSEOPerformance, Value: 7.4},
		},
	}
}

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("missing bearer token")
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func newTestService(t *testing.T, baseURL string) Service {
	t.Helper()
	svc, err := NewService(config.OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGenerateOverview(t *testing.T) {
	server := chatServer(t, http.StatusOK, "Traffic grew 10% this period.")
	defer server.Close()
	svc := newTestService(t, server.URL)

	overview, err := svc.GenerateOverview(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("GenerateOverview: %v", err)
	}
	if overview.ExecutiveSummary != "Traffic grew 10% this period." {
		t.Fatalf("unexpected summary %q", overview.ExecutiveSummary)
	}
	if len(overview.Metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(overview.Metrics))
	}
	if len(overview.MetricsBySource[enums.KPISourceWebAnalytics]) != 1 {
		t.Fatalf("unexpected grouping: %+v", overview.MetricsBySource)
	}
}

func TestGenerateOverviewUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "overloaded", "type": "server_error"},
		})
	}))
	defer server.Close()
	svc := newTestService(t, server.URL)

	_, err := svc.GenerateOverview(context.Background(), testPayload())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGenerateOverviewEmptyPayload(t *testing.T) {
	server := chatServer(t, http.StatusOK, "unused")
	defer server.Close()
	svc := newTestService(t, server.URL)

	_, err := svc.GenerateOverview(context.Background(), &dashboard.Payload{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateOverviewEmptySummary(t *testing.T) {
	server := chatServer(t, http.StatusOK, "   ")
	defer server.Close()
	svc := newTestService(t, server.URL)

	_, err := svc.GenerateOverview(context.Background(), testPayload())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestBuildPromptMentionsMetrics(t *testing.T) {
	prompt := buildPrompt(testPayload())
	for _, want := range []string{"2026-08-01", "Users", "1200", "+10.0%", "Average Keyword Rank", "7.40"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
