package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/internal/webanalytics"
	"github.com/agencypulse/reporting-backend/pkg/config"
	dbtypes "github.com/agencypulse/reporting-backend/pkg/db/types"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/redis"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

type stubWebSource struct {
	totals *webanalytics.Totals
	charts *webanalytics.Charts
	err    error
	calls  int
	hook   func()
}

func (s *stubWebSource) FetchTotals(ctx context.Context, clientID string, period types.DateRange) (*webanalytics.Totals, error) {
	s.calls++
	if s.hook != nil {
		s.hook()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.totals, nil
}

func (s *stubWebSource) FetchCharts(ctx context.Context, clientID string, period types.DateRange) (*webanalytics.Charts, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.charts, nil
}

type stubAggregates struct {
	seo       *SEOTotals
	seoErr    error
	ai        *AITotals
	aiErr     error
	seoSeries *SEOSeries
	aiSeries  *AISeries
}

func (s *stubAggregates) SEOTotals(ctx context.Context, clientID uuid.UUID, period types.DateRange) (*SEOTotals, error) {
	if s.seoErr != nil {
		return nil, s.seoErr
	}
	return s.seo, nil
}

func (s *stubAggregates) AITotals(ctx context.Context, clientID, brandID *uuid.UUID, period types.DateRange) (*AITotals, error) {
	if s.aiErr != nil {
		return nil, s.aiErr
	}
	return s.ai, nil
}

func (s *stubAggregates) SEOSeries(ctx context.Context, clientID uuid.UUID, period types.DateRange) (*SEOSeries, error) {
	if s.seoErr != nil {
		return nil, s.seoErr
	}
	return s.seoSeries, nil
}

func (s *stubAggregates) AISeries(ctx context.Context, clientID, brandID *uuid.UUID, period types.DateRange) (*AISeries, error) {
	if s.aiErr != nil {
		return nil, s.aiErr
	}
	return s.aiSeries, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	setKeys []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.entries[key] = string(v)
	case string:
		m.entries[key] = v
	default:
		return fmt.Errorf("unexpected cache value type %T", value)
	}
	m.setKeys = append(m.setKeys, key)
	return nil
}

func (m *memoryCache) DashboardCacheKey(subjectID, start, end string) string {
	return fmt.Sprintf("ap:dashboard:%s:%s:%s", subjectID, start, end)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{
		CacheTTL:       5 * time.Minute,
		StaleGrace:     time.Hour,
		ComposeTimeout: 30 * time.Second,
		MaxRangeDays:   366,
	}
}

func healthySources() (*stubWebSource, *stubAggregates) {
	web := &stubWebSource{
		totals: &webanalytics.Totals{Users: 120, Sessions: 200, EngagementRate: 0.5},
		charts: &webanalytics.Charts{
			UsersOverTime:     []webanalytics.TimeSeriesPoint{{Date: "2026-08-01", Value: 12}},
			SessionsByChannel: []webanalytics.LabelValue{{Label: "organic", Value: 30}},
			EngagementTrend:   []webanalytics.TimeSeriesPoint{{Date: "2026-08-01", Value: 0.5}},
		},
	}
	aggregates := &stubAggregates{
		seo: &SEOTotals{AvgKeywordRank: 8.5, TrackedKeywords: 40, Top10Keywords: 12},
		ai:  &AITotals{BrandMentions: 15, AIVisibilityScore: 30, ShareOfVoice: 10, AvgSentiment: 0.4},
		seoSeries: &SEOSeries{
			RankDistribution: []ChartPoint{{Label: "Top 3", Value: 6}},
			RankTrend:        []ChartPoint{{Label: "2026-08-01", Value: 8.5}},
			TopMovers:        []ChartPoint{{Label: "running shoes", Value: 4}},
		},
		aiSeries: &AISeries{
			MentionsOverTime:   []ChartPoint{{Label: "2026-08-01", Value: 3}},
			ShareOfVoiceTrend:  []ChartPoint{{Label: "2026-08-01", Value: 25}},
			SentimentBreakdown: []ChartPoint{{Label: "Positive", Value: 2}},
		},
	}
	return web, aggregates
}

func newTestService(t *testing.T, web *stubWebSource, aggregates *stubAggregates, cache *memoryCache) *service {
	t.Helper()
	svc, err := NewService(web, aggregates, cache, testConfig(), nil, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc.(*service)
}

func clientRequest(t *testing.T) Request {
	t.Helper()
	id := uuid.New()
	r, err := types.ParseDateRange("2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	return Request{ClientID: &id, Range: r}
}

func TestComposeKPIsFullPayload(t *testing.T) {
	web, aggregates := healthySources()
	svc := newTestService(t, web, aggregates, newMemoryCache())

	payload, err := svc.ComposeKPIs(context.Background(), ModeAdmin, clientRequest(t))
	if err != nil {
		t.Fatalf("ComposeKPIs: %v", err)
	}
	if len(payload.Sources) != 3 {
		t.Fatalf("expected all three sources, got %v", payload.Sources)
	}
	if len(payload.KPIs) != 18 {
		t.Fatalf("expected 18 kpis, got %d", len(payload.KPIs))
	}

	byKey := map[string]KPIValue{}
	for _, kpi := range payload.KPIs {
		byKey[kpi.Key] = kpi
	}
	if byKey["users"].Value != 120 {
		t.Fatalf("users kpi wrong: %+v", byKey["users"])
	}
	if byKey["users"].PreviousValue == nil || byKey["users"].ChangePct == nil {
		t.Fatal("expected prior-period comparison on users kpi")
	}
	if *byKey["users"].ChangePct != 0 {
		t.Fatalf("same totals both periods must be 0%% change, got %v", *byKey["users"].ChangePct)
	}
}

func TestComposeKPIsBrandScopedSkipsClientSources(t *testing.T) {
	web, aggregates := healthySources()
	svc := newTestService(t, web, aggregates, newMemoryCache())

	brandID := uuid.New()
	req := clientRequest(t)
	req.ClientID = nil
	req.BrandID = &brandID

	payload, err := svc.ComposeKPIs(context.Background(), ModeAdmin, req)
	if err != nil {
		t.Fatalf("ComposeKPIs: %v", err)
	}
	if len(payload.Sources) != 1 || payload.Sources[0] != enums.KPISourceAIVisibility {
		t.Fatalf("brand requests compose ai visibility only, got %v", payload.Sources)
	}
	if web.calls != 0 {
		t.Fatal("brand requests must not touch web analytics")
	}
}

func TestComposeKPIsDegradesPerSource(t *testing.T) {
	web, aggregates := healthySources()
	web.err = errors.New("bigquery unavailable")
	svc := newTestService(t, web, aggregates, newMemoryCache())

	payload, err := svc.ComposeKPIs(context.Background(), ModeAdmin, clientRequest(t))
	if err != nil {
		t.Fatalf("ComposeKPIs: %v", err)
	}
	if len(payload.Sources) != 2 {
		t.Fatalf("expected seo and ai to survive, got %v", payload.Sources)
	}
	for _, kpi := range payload.KPIs {
		if kpi.Source == enums.KPISourceWebAnalytics {
			t.Fatalf("failed source leaked kpi %q", kpi.Key)
		}
	}
}

func TestComposeKPIsAllSourcesFailed(t *testing.T) {
	web, aggregates := healthySources()
	web.err = errors.New("bigquery unavailable")
	aggregates.seoErr = errors.New("db down")
	aggregates.aiErr = errors.New("db down")
	svc := newTestService(t, web, aggregates, newMemoryCache())

	_, err := svc.ComposeKPIs(context.Background(), ModeAdmin, clientRequest(t))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestComposeKPIsServesFreshCache(t *testing.T) {
	web, aggregates := healthySources()
	cache := newMemoryCache()
	svc := newTestService(t, web, aggregates, cache)
	req := clientRequest(t)

	first, err := svc.ComposeKPIs(context.Background(), ModeAdmin, req)
	if err != nil {
		t.Fatalf("first compose: %v", err)
	}
	if len(cache.setKeys) != 1 {
		t.Fatalf("expected one cache write, got %d", len(cache.setKeys))
	}

	web.err = errors.New("bigquery unavailable") // cache must absorb this
	second, err := svc.ComposeKPIs(context.Background(), ModeAdmin, req)
	if err != nil {
		t.Fatalf("second compose: %v", err)
	}
	if !second.ComposedAt.Equal(first.ComposedAt) {
		t.Fatal("expected the cached snapshot back")
	}
	if web.calls != 2 {
		t.Fatalf("cache hit must not re-fetch, calls=%d", web.calls)
	}
}

func TestComposeKPIsServesStaleOnFailure(t *testing.T) {
	web, aggregates := healthySources()
	cache := newMemoryCache()
	svc := newTestService(t, web, aggregates, cache)
	req := clientRequest(t)

	first, err := svc.ComposeKPIs(context.Background(), ModeAdmin, req)
	if err != nil {
		t.Fatalf("first compose: %v", err)
	}

	// Age the entry past the fresh window but keep it readable.
	key := cache.DashboardCacheKey(req.SubjectID(), req.Range.StartString(), req.Range.EndString())
	aged := *first
	aged.ComposedAt = aged.ComposedAt.Add(-10 * time.Minute)
	raw, _ := json.Marshal(&aged)
	cache.entries[key] = string(raw)

	web.err = errors.New("bigquery unavailable")
	aggregates.seoErr = errors.New("db down")
	aggregates.aiErr = errors.New("db down")

	payload, err := svc.ComposeKPIs(context.Background(), ModeAdmin, req)
	if err != nil {
		t.Fatalf("expected stale serve, got %v", err)
	}
	if !payload.ComposedAt.Equal(aged.ComposedAt) {
		t.Fatal("expected the stale snapshot back")
	}
}

func TestComposeKPIsLastCacheKeyWins(t *testing.T) {
	web, aggregates := healthySources()
	cache := newMemoryCache()
	svc := newTestService(t, web, aggregates, cache)
	req := clientRequest(t)
	subject := req.SubjectID()

	newer, err := types.ParseDateRange("2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	newerKey := cache.DashboardCacheKey(subject, newer.StartString(), newer.EndString())
	supersededKey := cache.DashboardCacheKey(subject, req.Range.StartString(), req.Range.EndString())

	// A newer request for the same subject lands mid-composition.
	web.hook = func() { svc.activeKeys.Store(subject, newerKey) }

	payload, err := svc.ComposeKPIs(context.Background(), ModeAdmin, req)
	if err != nil {
		t.Fatalf("ComposeKPIs: %v", err)
	}
	if payload == nil {
		t.Fatal("superseded composition still answers its caller")
	}
	for _, k := range cache.setKeys {
		if k == supersededKey {
			t.Fatal("superseded payload must not be cached")
		}
	}
}

func TestComposeKPIsValidation(t *testing.T) {
	web, aggregates := healthySources()
	svc := newTestService(t, web, aggregates, newMemoryCache())

	t.Run("missing subject", func(t *testing.T) {
		req := clientRequest(t)
		req.ClientID = nil
		_, err := svc.ComposeKPIs(context.Background(), ModeAdmin, req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("range too long", func(t *testing.T) {
		req := clientRequest(t)
		r, err := types.ParseDateRange("2020-01-01", "2026-08-31")
		if err != nil {
			t.Fatalf("ParseDateRange: %v", err)
		}
		req.Range = r
		_, err = svc.ComposeKPIs(context.Background(), ModeAdmin, req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestComposeChartsFullPayload(t *testing.T) {
	web, aggregates := healthySources()
	svc := newTestService(t, web, aggregates, newMemoryCache())

	payload, err := svc.ComposeCharts(context.Background(), clientRequest(t))
	if err != nil {
		t.Fatalf("ComposeCharts: %v", err)
	}
	if len(payload.Sources) != 3 {
		t.Fatalf("expected all three sources, got %v", payload.Sources)
	}
	if len(payload.Charts) != 9 {
		t.Fatalf("expected 9 charts, got %d", len(payload.Charts))
	}

	byKey := map[string]ChartSeries{}
	for _, chart := range payload.Charts {
		byKey[chart.Key] = chart
	}
	if got := byKey["users_over_time"].Points; len(got) != 1 || got[0].Value != 12 {
		t.Fatalf("users_over_time wrong: %+v", got)
	}
	if got := byKey["sessions_by_channel"].Points; len(got) != 1 || got[0].Label != "organic" {
		t.Fatalf("sessions_by_channel wrong: %+v", got)
	}
	if got := byKey["top_movers"].Points; len(got) != 1 || got[0].Label != "running shoes" {
		t.Fatalf("top_movers wrong: %+v", got)
	}
	if byKey["sentiment_breakdown"].Source != enums.KPISourceAIVisibility {
		t.Fatalf("sentiment_breakdown source wrong: %+v", byKey["sentiment_breakdown"])
	}
}

func TestComposeChartsBrandScopedSkipsClientSources(t *testing.T) {
	web, aggregates := healthySources()
	svc := newTestService(t, web, aggregates, newMemoryCache())

	brandID := uuid.New()
	req := clientRequest(t)
	req.ClientID = nil
	req.BrandID = &brandID

	payload, err := svc.ComposeCharts(context.Background(), req)
	if err != nil {
		t.Fatalf("ComposeCharts: %v", err)
	}
	if len(payload.Sources) != 1 || payload.Sources[0] != enums.KPISourceAIVisibility {
		t.Fatalf("brand requests compose ai charts only, got %v", payload.Sources)
	}
	if web.calls != 0 {
		t.Fatal("brand requests must not touch web analytics")
	}
}

func TestComposeChartsDegradesPerSource(t *testing.T) {
	web, aggregates := healthySources()
	web.err = errors.New("bigquery unavailable")
	svc := newTestService(t, web, aggregates, newMemoryCache())

	payload, err := svc.ComposeCharts(context.Background(), clientRequest(t))
	if err != nil {
		t.Fatalf("ComposeCharts: %v", err)
	}
	if len(payload.Sources) != 2 {
		t.Fatalf("expected seo and ai to survive, got %v", payload.Sources)
	}
	for _, chart := range payload.Charts {
		if chart.Source == enums.KPISourceWebAnalytics {
			t.Fatalf("failed source leaked chart %q", chart.Key)
		}
	}
}

func TestFilterChartsPublicTriState(t *testing.T) {
	web, aggregates := healthySources()
	svc := newTestService(t, web, aggregates, newMemoryCache())
	payload, err := svc.ComposeCharts(context.Background(), clientRequest(t))
	if err != nil {
		t.Fatalf("ComposeCharts: %v", err)
	}
	catalog := visibility.DefaultCatalog()

	t.Run("nil selection shows everything", func(t *testing.T) {
		snapshot, err := visibility.ParseSnapshot(nil)
		if err != nil {
			t.Fatalf("ParseSnapshot: %v", err)
		}
		filtered := FilterCharts(payload, visibility.NewPublicResolver(catalog, snapshot))
		if len(filtered.Sections) != 3 {
			t.Fatalf("expected every chart section, got %d", len(filtered.Sections))
		}
		total := 0
		for _, section := range filtered.Sections {
			total += len(section.Charts)
		}
		if total != 9 {
			t.Fatalf("expected all 9 charts, got %d", total)
		}
	})

	t.Run("hidden charts are absent", func(t *testing.T) {
		snapshot, err := visibility.ParseSnapshot(dbtypes.JSONText(`{"visible_sections":["web_analytics"],"selected_charts":["users_over_time"]}`))
		if err != nil {
			t.Fatalf("ParseSnapshot: %v", err)
		}
		filtered := FilterCharts(payload, visibility.NewPublicResolver(catalog, snapshot))
		if len(filtered.Sections) != 1 || filtered.Sections[0].ID != enums.SectionWebAnalytics {
			t.Fatalf("expected web section only, got %+v", filtered.Sections)
		}
		if len(filtered.Sections[0].Charts) != 1 || filtered.Sections[0].Charts[0].Key != "users_over_time" {
			t.Fatalf("expected users_over_time only, got %+v", filtered.Sections[0].Charts)
		}
	})

	t.Run("section with every chart hidden is dropped", func(t *testing.T) {
		snapshot, err := visibility.ParseSnapshot(dbtypes.JSONText(`{"selected_charts":[]}`))
		if err != nil {
			t.Fatalf("ParseSnapshot: %v", err)
		}
		filtered := FilterCharts(payload, visibility.NewPublicResolver(catalog, snapshot))
		if len(filtered.Sections) != 0 {
			t.Fatalf("expected no chart sections, got %+v", filtered.Sections)
		}
	})

	t.Run("hidden section suppresses its charts", func(t *testing.T) {
		snapshot, err := visibility.ParseSnapshot(dbtypes.JSONText(`{"visible_sections":["seo_performance"]}`))
		if err != nil {
			t.Fatalf("ParseSnapshot: %v", err)
		}
		filtered := FilterCharts(payload, visibility.NewPublicResolver(catalog, snapshot))
		if len(filtered.Sections) != 1 || filtered.Sections[0].ID != enums.SectionSEOPerformance {
			t.Fatalf("expected seo section only, got %+v", filtered.Sections)
		}
	})
}

func TestFilterPayloadPublicTriState(t *testing.T) {
	web, aggregates := healthySources()
	svc := newTestService(t, web, aggregates, newMemoryCache())
	payload, err := svc.ComposeKPIs(context.Background(), ModeAdmin, clientRequest(t))
	if err != nil {
		t.Fatalf("ComposeKPIs: %v", err)
	}
	catalog := visibility.DefaultCatalog()

	t.Run("nil selection shows everything", func(t *testing.T) {
		snapshot, err := visibility.ParseSnapshot(nil)
		if err != nil {
			t.Fatalf("ParseSnapshot: %v", err)
		}
		filtered := FilterPayload(payload, visibility.NewPublicResolver(catalog, snapshot))
		if len(filtered.Sections) != 4 {
			t.Fatalf("expected every section, got %d", len(filtered.Sections))
		}
	})

	t.Run("hidden kpis are absent not zeroed", func(t *testing.T) {
		snapshot, err := visibility.ParseSnapshot(dbtypes.JSONText(`{"visible_sections":["web_analytics"],"selected_kpis":["users"]}`))
		if err != nil {
			t.Fatalf("ParseSnapshot: %v", err)
		}
		filtered := FilterPayload(payload, visibility.NewPublicResolver(catalog, snapshot))
		if len(filtered.Sections) != 1 || filtered.Sections[0].ID != enums.SectionWebAnalytics {
			t.Fatalf("expected web section only, got %+v", filtered.Sections)
		}
		if len(filtered.Sections[0].KPIs) != 1 || filtered.Sections[0].KPIs[0].Key != "users" {
			t.Fatalf("expected the users kpi only, got %+v", filtered.Sections[0].KPIs)
		}
	})

	t.Run("visible section with empty kpi set keeps its header", func(t *testing.T) {
		snapshot, err := visibility.ParseSnapshot(dbtypes.JSONText(`{"visible_sections":["seo_performance"],"selected_kpis":[]}`))
		if err != nil {
			t.Fatalf("ParseSnapshot: %v", err)
		}
		filtered := FilterPayload(payload, visibility.NewPublicResolver(catalog, snapshot))
		if len(filtered.Sections) != 1 {
			t.Fatalf("expected the seo header to survive, got %+v", filtered.Sections)
		}
		if len(filtered.Sections[0].KPIs) != 0 {
			t.Fatalf("expected zero kpis, got %+v", filtered.Sections[0].KPIs)
		}
	})

	t.Run("hidden change period strips deltas", func(t *testing.T) {
		snapshot, err := visibility.ParseSnapshot(dbtypes.JSONText(`{"show_change_period":{"web_analytics":false}}`))
		if err != nil {
			t.Fatalf("ParseSnapshot: %v", err)
		}
		filtered := FilterPayload(payload, visibility.NewPublicResolver(catalog, snapshot))
		for _, section := range filtered.Sections {
			if section.ID != enums.SectionWebAnalytics {
				continue
			}
			if section.ShowChangePeriod {
				t.Fatal("change period flag not applied")
			}
			for _, kpi := range section.KPIs {
				if kpi.PreviousValue != nil || kpi.ChangePct != nil {
					t.Fatalf("delta leaked on %q", kpi.Key)
				}
			}
		}
	})
}
