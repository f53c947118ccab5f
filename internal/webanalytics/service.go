package webanalytics

import (
	"context"
	"fmt"

	cloudbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/agencypulse/reporting-backend/pkg/bigquery"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

const (
	totalsSQL = `
SELECT
  COUNT(DISTINCT user_pseudo_id) AS users,
  COUNT(DISTINCT IF(is_new_user, user_pseudo_id, NULL)) AS new_users,
  COUNT(DISTINCT session_id) AS sessions,
  COUNT(DISTINCT IF(engaged, session_id, NULL)) AS engaged_sessions,
  SAFE_DIVIDE(COUNT(DISTINCT IF(engaged, session_id, NULL)), NULLIF(COUNT(DISTINCT session_id), 0)) AS engagement_rate,
  SAFE_DIVIDE(COUNT(DISTINCT IF(NOT engaged, session_id, NULL)), NULLIF(COUNT(DISTINCT session_id), 0)) AS bounce_rate,
  SAFE_DIVIDE(SUM(COALESCE(session_duration_seconds, 0)), NULLIF(COUNT(DISTINCT session_id), 0)) AS avg_session_duration,
  COUNTIF(event_name = 'conversion') AS conversions
FROM %s
WHERE client_id = @clientID
  AND event_date BETWEEN @start AND @end
`

	usersSeriesSQL = `
SELECT
  FORMAT_DATE('%%F', event_date) AS day,
  COUNT(DISTINCT user_pseudo_id) AS value
FROM %s
WHERE client_id = @clientID
  AND event_date BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	sessionsByChannelSQL = `
SELECT
  COALESCE(channel, '(none)') AS label,
  COUNT(DISTINCT session_id) AS value
FROM %s
WHERE client_id = @clientID
  AND event_date BETWEEN @start AND @end
GROUP BY label
ORDER BY value DESC
LIMIT 10
`

	engagementSeriesSQL = `
SELECT
  FORMAT_DATE('%%F', event_date) AS day,
  SAFE_DIVIDE(COUNT(DISTINCT IF(engaged, session_id, NULL)), NULLIF(COUNT(DISTINCT session_id), 0)) AS rate
FROM %s
WHERE client_id = @clientID
  AND event_date BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`
)

// Totals are the aggregate web KPI values for one period.
type Totals struct {
	Users              int64
	NewUsers           int64
	Sessions           int64
	EngagedSessions    int64
	EngagementRate     float64
	BounceRate         float64
	AvgSessionDuration float64
	Conversions        int64
}

// TimeSeriesPoint is one day in a chart series.
type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// LabelValue is one slice of a categorical chart.
type LabelValue struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Charts bundles the chart series the web section renders.
type Charts struct {
	UsersOverTime     []TimeSeriesPoint `json:"users_over_time"`
	SessionsByChannel []LabelValue      `json:"sessions_by_channel"`
	EngagementTrend   []TimeSeriesPoint `json:"engagement_trend"`
}

// Service provides web analytics aggregates from the BigQuery events export.
type Service interface {
	FetchTotals(ctx context.Context, clientID string, period types.DateRange) (*Totals, error)
	FetchCharts(ctx context.Context, clientID string, period types.DateRange) (*Charts, error)
}

// rowIterator matches the Next method of a BigQuery row iterator.
type rowIterator interface {
	Next(dst any) error
}

// queryRunner executes parameterized SQL and hands back the row iterator.
type queryRunner interface {
	Query(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (rowIterator, error)
}

type clientRunner struct {
	client *bigquery.Client
}

func (r clientRunner) Query(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (rowIterator, error) {
	return r.client.Query(ctx, sql, params)
}

type service struct {
	runner   queryRunner
	tableRef string
}

// NewService builds a web analytics service backed by BigQuery.
func NewService(client *bigquery.Client) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	tableRef := client.WebEventsTable()
	if tableRef == "" {
		return nil, fmt.Errorf("web events table not configured")
	}
	return &service{runner: clientRunner{client: client}, tableRef: tableRef}, nil
}

type totalsRow struct {
	Users              int64                     `bigquery:"users"`
	NewUsers           int64                     `bigquery:"new_users"`
	Sessions           int64                     `bigquery:"sessions"`
	EngagedSessions    int64                     `bigquery:"engaged_sessions"`
	EngagementRate     cloudbigquery.NullFloat64 `bigquery:"engagement_rate"`
	BounceRate         cloudbigquery.NullFloat64 `bigquery:"bounce_rate"`
	AvgSessionDuration cloudbigquery.NullFloat64 `bigquery:"avg_session_duration"`
	Conversions        int64                     `bigquery:"conversions"`
}

type labelRow struct {
	Label string `bigquery:"label"`
	Value int64  `bigquery:"value"`
}

func (s *service) FetchTotals(ctx context.Context, clientID string, period types.DateRange) (*Totals, error) {
	if err := validateQuery(clientID, period); err != nil {
		return nil, err
	}

	iter, err := s.runner.Query(ctx, fmt.Sprintf(totalsSQL, s.tableRef), s.baseParams(clientID, period))
	if err != nil {
		return nil, fmt.Errorf("query web totals: %w", err)
	}

	var row totalsRow
	if err := iter.Next(&row); err != nil {
		if err == iterator.Done {
			return &Totals{}, nil
		}
		return nil, fmt.Errorf("reading web totals row: %w", err)
	}

	return &Totals{
		Users:              row.Users,
		NewUsers:           row.NewUsers,
		Sessions:           row.Sessions,
		EngagedSessions:    row.EngagedSessions,
		EngagementRate:     nullFloat(row.EngagementRate),
		BounceRate:         nullFloat(row.BounceRate),
		AvgSessionDuration: nullFloat(row.AvgSessionDuration),
		Conversions:        row.Conversions,
	}, nil
}

func (s *service) FetchCharts(ctx context.Context, clientID string, period types.DateRange) (*Charts, error) {
	if err := validateQuery(clientID, period); err != nil {
		return nil, err
	}
	params := s.baseParams(clientID, period)

	users, err := s.querySeries(ctx, fmt.Sprintf(usersSeriesSQL, s.tableRef), params, "value")
	if err != nil {
		return nil, err
	}
	channels, err := s.queryLabels(ctx, fmt.Sprintf(sessionsByChannelSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}
	engagement, err := s.querySeries(ctx, fmt.Sprintf(engagementSeriesSQL, s.tableRef), params, "rate")
	if err != nil {
		return nil, err
	}

	return &Charts{
		UsersOverTime:     users,
		SessionsByChannel: channels,
		EngagementTrend:   engagement,
	}, nil
}

func validateQuery(clientID string, period types.DateRange) error {
	if clientID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if period.Start.IsZero() || period.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if period.End.Before(period.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	return nil
}

func (s *service) baseParams(clientID string, period types.DateRange) []cloudbigquery.QueryParameter {
	return []cloudbigquery.QueryParameter{
		{Name: "clientID", Value: clientID},
		{Name: "start", Value: period.StartString()},
		{Name: "end", Value: period.EndString()},
	}
}

func (s *service) querySeries(ctx context.Context, sql string, params []cloudbigquery.QueryParameter, valueField string) ([]TimeSeriesPoint, error) {
	iter, err := s.runner.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}

	var points []TimeSeriesPoint
	for {
		var row map[string]cloudbigquery.Value
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("reading series row: %w", err)
		}
		day, _ := row["day"].(string)
		points = append(points, TimeSeriesPoint{Date: day, Value: toFloat(row[valueField])})
	}
	return points, nil
}

func (s *service) queryLabels(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]LabelValue, error) {
	iter, err := s.runner.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}

	var result []LabelValue
	for {
		var row labelRow
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("reading label row: %w", err)
		}
		result = append(result, LabelValue{Label: row.Label, Value: row.Value})
	}
	return result, nil
}

func nullFloat(v cloudbigquery.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}

func toFloat(v cloudbigquery.Value) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	default:
		return 0
	}
}
