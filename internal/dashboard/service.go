package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/internal/webanalytics"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/metrics"
	"github.com/agencypulse/reporting-backend/pkg/redis"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

// Cache modes, used only as metric labels.
const (
	ModeAdmin  = "admin"
	ModePublic = "public"
)

type webSource interface {
	FetchTotals(ctx context.Context, clientID string, period types.DateRange) (*webanalytics.Totals, error)
	FetchCharts(ctx context.Context, clientID string, period types.DateRange) (*webanalytics.Charts, error)
}

type aggregatesRepository interface {
	SEOTotals(ctx context.Context, clientID uuid.UUID, period types.DateRange) (*SEOTotals, error)
	AITotals(ctx context.Context, clientID, brandID *uuid.UUID, period types.DateRange) (*AITotals, error)
	SEOSeries(ctx context.Context, clientID uuid.UUID, period types.DateRange) (*SEOSeries, error)
	AISeries(ctx context.Context, clientID, brandID *uuid.UUID, period types.DateRange) (*AISeries, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DashboardCacheKey(subjectID, start, end string) string
}

// Service composes the KPI dashboard from the three analytics pipelines.
type Service interface {
	ComposeKPIs(ctx context.Context, mode string, req Request) (*Payload, error)
	ComposeCharts(ctx context.Context, req Request) (*ChartsPayload, error)
}

type service struct {
	web        webSource
	aggregates aggregatesRepository
	cache      snapshotCache
	cfg        config.DashboardConfig
	met        *metrics.DashboardMetrics
	logg       *logger.Logger
	now        func() time.Time

	// activeKeys tracks the most recently requested cache key per subject so
	// a slow composition for a superseded range never overwrites the cache.
	activeKeys sync.Map
}

// NewService builds the dashboard composition service. The metrics handle may
// be nil; every recorder on it is nil-safe.
func NewService(web webSource, aggregates aggregatesRepository, cache snapshotCache, cfg config.DashboardConfig, met *metrics.DashboardMetrics, logg *logger.Logger) (Service, error) {
	if web == nil {
		return nil, fmt.Errorf("web analytics source required")
	}
	if aggregates == nil {
		return nil, fmt.Errorf("aggregates repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("snapshot cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		web:        web,
		aggregates: aggregates,
		cache:      cache,
		cfg:        cfg,
		met:        met,
		logg:       logg,
		now:        time.Now,
	}, nil
}

func (s *service) validate(req Request) error {
	if req.SubjectID() == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client or brand id required")
	}
	if req.Range.Start.IsZero() || req.Range.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date range is required")
	}
	if req.Range.End.Before(req.Range.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	if s.cfg.MaxRangeDays > 0 && req.Range.Days() > s.cfg.MaxRangeDays {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("date range exceeds %d days", s.cfg.MaxRangeDays))
	}
	return nil
}

func (s *service) ComposeKPIs(ctx context.Context, mode string, req Request) (*Payload, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	subjectID := req.SubjectID()
	key := s.cache.DashboardCacheKey(subjectID, req.Range.StartString(), req.Range.EndString())
	s.activeKeys.Store(subjectID, key)

	cached := s.readCache(ctx, key)
	if cached != nil && s.now().Sub(cached.ComposedAt) <= s.cfg.CacheTTL {
		s.met.IncCacheHit(mode)
		return cached, nil
	}
	s.met.IncCacheMiss(mode)

	payload, err := s.compose(ctx, req)
	if err != nil {
		// Entry TTL already bounds staleness to CacheTTL+StaleGrace, so any
		// readable entry is still servable.
		if cached != nil {
			s.logg.Error(s.logg.WithField(ctx, "cache_key", key),
				"dashboard composition failed, serving stale snapshot", err)
			return cached, nil
		}
		return nil, err
	}

	if current, ok := s.activeKeys.Load(subjectID); ok && current != key {
		s.met.IncStaleDiscard()
		s.logg.Info(s.logg.WithField(ctx, "cache_key", key),
			"discarding superseded dashboard snapshot")
		return payload, nil
	}
	s.writeCache(ctx, key, payload)
	return payload, nil
}

// compose fetches every source for the current and prior period. A failing
// source drops its KPIs from the payload instead of failing the whole report;
// only an all-source failure is an error.
func (s *service) compose(ctx context.Context, req Request) (*Payload, error) {
	ctx, cancel := contextWithTimeout(ctx, s.cfg.ComposeTimeout)
	defer cancel()

	previous := req.Range.Previous()
	payload := &Payload{
		SubjectID:  req.SubjectID(),
		StartDate:  req.Range.StartString(),
		EndDate:    req.Range.EndString(),
		ComposedAt: s.now().UTC(),
	}

	var failures []error

	if req.ClientID != nil {
		if kpis, err := s.composeWeb(ctx, *req.ClientID, req.Range, previous); err != nil {
			failures = append(failures, err)
			s.sourceFailed(ctx, enums.KPISourceWebAnalytics, err)
		} else {
			payload.KPIs = append(payload.KPIs, kpis...)
			payload.Sources = append(payload.Sources, enums.KPISourceWebAnalytics)
		}

		if kpis, err := s.composeSEO(ctx, *req.ClientID, req.Range, previous); err != nil {
			failures = append(failures, err)
			s.sourceFailed(ctx, enums.KPISourceSEOPerformance, err)
		} else {
			payload.KPIs = append(payload.KPIs, kpis...)
			payload.Sources = append(payload.Sources, enums.KPISourceSEOPerformance)
		}
	}

	if kpis, err := s.composeAI(ctx, req.ClientID, req.BrandID, req.Range, previous); err != nil {
		failures = append(failures, err)
		s.sourceFailed(ctx, enums.KPISourceAIVisibility, err)
	} else {
		payload.KPIs = append(payload.KPIs, kpis...)
		payload.Sources = append(payload.Sources, enums.KPISourceAIVisibility)
	}

	if len(payload.Sources) == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.Join(failures...),
			"all kpi sources failed")
	}
	return payload, nil
}

func (s *service) composeWeb(ctx context.Context, clientID uuid.UUID, current, previous types.DateRange) ([]KPIValue, error) {
	started := s.now()
	cur, err := s.web.FetchTotals(ctx, clientID.String(), current)
	if err != nil {
		return nil, err
	}
	prev, err := s.web.FetchTotals(ctx, clientID.String(), previous)
	if err != nil {
		return nil, err
	}
	s.met.ObserveCompose(enums.KPISourceWebAnalytics.String(), s.now().Sub(started))

	src := enums.KPISourceWebAnalytics
	return []KPIValue{
		kpiValue("users", "Users", src, float64(cur.Users), ptr(float64(prev.Users))),
		kpiValue("new_users", "New Users", src, float64(cur.NewUsers), ptr(float64(prev.NewUsers))),
		kpiValue("sessions", "Sessions", src, float64(cur.Sessions), ptr(float64(prev.Sessions))),
		kpiValue("engaged_sessions", "Engaged Sessions", src, float64(cur.EngagedSessions), ptr(float64(prev.EngagedSessions))),
		kpiValue("engagement_rate", "Engagement Rate", src, cur.EngagementRate, ptr(prev.EngagementRate)),
		kpiValue("bounce_rate", "Bounce Rate", src, cur.BounceRate, ptr(prev.BounceRate)),
		kpiValue("avg_session_duration", "Avg. Session Duration", src, cur.AvgSessionDuration, ptr(prev.AvgSessionDuration)),
		kpiValue("conversions", "Conversions", src, float64(cur.Conversions), ptr(float64(prev.Conversions))),
	}, nil
}

func (s *service) composeSEO(ctx context.Context, clientID uuid.UUID, current, previous types.DateRange) ([]KPIValue, error) {
	started := s.now()
	cur, err := s.aggregates.SEOTotals(ctx, clientID, current)
	if err != nil {
		return nil, err
	}
	prev, err := s.aggregates.SEOTotals(ctx, clientID, previous)
	if err != nil {
		return nil, err
	}
	s.met.ObserveCompose(enums.KPISourceSEOPerformance.String(), s.now().Sub(started))

	src := enums.KPISourceSEOPerformance
	return []KPIValue{
		kpiValue("avg_keyword_rank", "Average Keyword Rank", src, cur.AvgKeywordRank, ptr(prev.AvgKeywordRank)),
		kpiValue("tracked_keywords", "Tracked Keywords", src, float64(cur.TrackedKeywords), ptr(float64(prev.TrackedKeywords))),
		kpiValue("top3_keywords", "Top 3 Keywords", src, float64(cur.Top3Keywords), ptr(float64(prev.Top3Keywords))),
		kpiValue("top10_keywords", "Top 10 Keywords", src, float64(cur.Top10Keywords), ptr(float64(prev.Top10Keywords))),
		kpiValue("improved_keywords", "Improved Keywords", src, float64(cur.ImprovedKeywords), ptr(float64(prev.ImprovedKeywords))),
		kpiValue("declined_keywords", "Declined Keywords", src, float64(cur.DeclinedKeywords), ptr(float64(prev.DeclinedKeywords))),
	}, nil
}

func (s *service) composeAI(ctx context.Context, clientID, brandID *uuid.UUID, current, previous types.DateRange) ([]KPIValue, error) {
	started := s.now()
	cur, err := s.aggregates.AITotals(ctx, clientID, brandID, current)
	if err != nil {
		return nil, err
	}
	prev, err := s.aggregates.AITotals(ctx, clientID, brandID, previous)
	if err != nil {
		return nil, err
	}
	s.met.ObserveCompose(enums.KPISourceAIVisibility.String(), s.now().Sub(started))

	src := enums.KPISourceAIVisibility
	return []KPIValue{
		kpiValue("brand_mentions", "Brand Mentions", src, float64(cur.BrandMentions), ptr(float64(prev.BrandMentions))),
		kpiValue("ai_visibility_score", "AI Visibility Score", src, cur.AIVisibilityScore, ptr(prev.AIVisibilityScore)),
		kpiValue("share_of_voice", "Share of Voice", src, cur.ShareOfVoice, ptr(prev.ShareOfVoice)),
		kpiValue("avg_sentiment", "Average Sentiment", src, cur.AvgSentiment, ptr(prev.AvgSentiment)),
	}, nil
}

// ComposeCharts fetches the chart series behind every section. Charts are not
// snapshot-cached: the queries are already grouped and bounded, and the KPI
// cache contract keys on the summary payload alone. Degradation matches
// ComposeKPIs: a failing source drops its charts, an all-source failure errors.
func (s *service) ComposeCharts(ctx context.Context, req Request) (*ChartsPayload, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	ctx, cancel := contextWithTimeout(ctx, s.cfg.ComposeTimeout)
	defer cancel()

	payload := &ChartsPayload{
		SubjectID:  req.SubjectID(),
		StartDate:  req.Range.StartString(),
		EndDate:    req.Range.EndString(),
		Charts:     []ChartSeries{},
		ComposedAt: s.now().UTC(),
	}

	var failures []error

	if req.ClientID != nil {
		if charts, err := s.composeWebCharts(ctx, *req.ClientID, req.Range); err != nil {
			failures = append(failures, err)
			s.sourceFailed(ctx, enums.KPISourceWebAnalytics, err)
		} else {
			payload.Charts = append(payload.Charts, charts...)
			payload.Sources = append(payload.Sources, enums.KPISourceWebAnalytics)
		}

		if charts, err := s.composeSEOCharts(ctx, *req.ClientID, req.Range); err != nil {
			failures = append(failures, err)
			s.sourceFailed(ctx, enums.KPISourceSEOPerformance, err)
		} else {
			payload.Charts = append(payload.Charts, charts...)
			payload.Sources = append(payload.Sources, enums.KPISourceSEOPerformance)
		}
	}

	if charts, err := s.composeAICharts(ctx, req.ClientID, req.BrandID, req.Range); err != nil {
		failures = append(failures, err)
		s.sourceFailed(ctx, enums.KPISourceAIVisibility, err)
	} else {
		payload.Charts = append(payload.Charts, charts...)
		payload.Sources = append(payload.Sources, enums.KPISourceAIVisibility)
	}

	if len(payload.Sources) == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.Join(failures...),
			"all chart sources failed")
	}
	return payload, nil
}

func (s *service) composeWebCharts(ctx context.Context, clientID uuid.UUID, period types.DateRange) ([]ChartSeries, error) {
	started := s.now()
	charts, err := s.web.FetchCharts(ctx, clientID.String(), period)
	if err != nil {
		return nil, err
	}
	s.met.ObserveCompose(enums.KPISourceWebAnalytics.String(), s.now().Sub(started))

	src := enums.KPISourceWebAnalytics
	return []ChartSeries{
		chartSeries("users_over_time", "Users Over Time", src, seriesPoints(charts.UsersOverTime)),
		chartSeries("sessions_by_channel", "Sessions by Channel", src, labelPoints(charts.SessionsByChannel)),
		chartSeries("engagement_trend", "Engagement Trend", src, seriesPoints(charts.EngagementTrend)),
	}, nil
}

func (s *service) composeSEOCharts(ctx context.Context, clientID uuid.UUID, period types.DateRange) ([]ChartSeries, error) {
	started := s.now()
	series, err := s.aggregates.SEOSeries(ctx, clientID, period)
	if err != nil {
		return nil, err
	}
	s.met.ObserveCompose(enums.KPISourceSEOPerformance.String(), s.now().Sub(started))

	src := enums.KPISourceSEOPerformance
	return []ChartSeries{
		chartSeries("rank_distribution", "Rank Distribution", src, series.RankDistribution),
		chartSeries("rank_trend", "Rank Trend", src, series.RankTrend),
		chartSeries("top_movers", "Top Movers", src, series.TopMovers),
	}, nil
}

func (s *service) composeAICharts(ctx context.Context, clientID, brandID *uuid.UUID, period types.DateRange) ([]ChartSeries, error) {
	started := s.now()
	series, err := s.aggregates.AISeries(ctx, clientID, brandID, period)
	if err != nil {
		return nil, err
	}
	s.met.ObserveCompose(enums.KPISourceAIVisibility.String(), s.now().Sub(started))

	src := enums.KPISourceAIVisibility
	return []ChartSeries{
		chartSeries("mentions_over_time", "Mentions Over Time", src, series.MentionsOverTime),
		chartSeries("share_of_voice_trend", "Share of Voice Trend", src, series.ShareOfVoiceTrend),
		chartSeries("sentiment_breakdown", "Sentiment Breakdown", src, series.SentimentBreakdown),
	}, nil
}

func chartSeries(key, label string, source enums.KPISource, points []ChartPoint) ChartSeries {
	if points == nil {
		points = []ChartPoint{}
	}
	return ChartSeries{Key: key, Label: label, Source: source, Points: points}
}

func seriesPoints(points []webanalytics.TimeSeriesPoint) []ChartPoint {
	out := make([]ChartPoint, 0, len(points))
	for _, p := range points {
		out = append(out, ChartPoint{Label: p.Date, Value: p.Value})
	}
	return out
}

func labelPoints(values []webanalytics.LabelValue) []ChartPoint {
	out := make([]ChartPoint, 0, len(values))
	for _, v := range values {
		out = append(out, ChartPoint{Label: v.Label, Value: float64(v.Value)})
	}
	return out
}

func (s *service) sourceFailed(ctx context.Context, source enums.KPISource, err error) {
	s.met.IncSourceFailure(source.String())
	s.logg.Error(s.logg.WithField(ctx, "source", source.String()), "kpi source fetch failed", err)
}

func (s *service) readCache(ctx context.Context, key string) *Payload {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logg.Error(s.logg.WithField(ctx, "cache_key", key), "dashboard cache read failed", err)
		}
		return nil
	}
	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "cache_key", key), "dashboard cache entry corrupt", err)
		return nil
	}
	return &payload
}

func (s *service) writeCache(ctx context.Context, key string, payload *Payload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logg.Error(ctx, "encoding dashboard snapshot", err)
		return
	}
	ttl := s.cfg.CacheTTL + s.cfg.StaleGrace
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "cache_key", key), "dashboard cache write failed", err)
	}
}

func contextWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func ptr(v float64) *float64 {
	return &v
}
