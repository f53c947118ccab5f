package webanalytics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	cloudbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

// stubIterator replays canned rows into whatever destination the query loop
// scans with.
type stubIterator struct {
	rows []any
	idx  int
}

func (s *stubIterator) Next(dst any) error {
	if s.idx >= len(s.rows) {
		return iterator.Done
	}
	row := s.rows[s.idx]
	s.idx++
	switch d := dst.(type) {
	case *totalsRow:
		*d = row.(totalsRow)
	case *labelRow:
		*d = row.(labelRow)
	case *map[string]cloudbigquery.Value:
		*d = row.(map[string]cloudbigquery.Value)
	default:
		return fmt.Errorf("unexpected scan destination %T", dst)
	}
	return nil
}

// stubRunner hands out one iterator per query, in call order.
type stubRunner struct {
	iters []rowIterator
	err   error
	sqls  []string
}

func (s *stubRunner) Query(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (rowIterator, error) {
	s.sqls = append(s.sqls, sql)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.iters) == 0 {
		return &stubIterator{}, nil
	}
	next := s.iters[0]
	s.iters = s.iters[1:]
	return next, nil
}

func testPeriod(t *testing.T) types.DateRange {
	t.Helper()
	r, err := types.ParseDateRange("2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	return r
}

func newStubService(runner *stubRunner) *service {
	return &service{runner: runner, tableRef: "`proj.dataset.web_events`"}
}

func TestFetchTotalsZeroRows(t *testing.T) {
	svc := newStubService(&stubRunner{iters: []rowIterator{&stubIterator{}}})

	totals, err := svc.FetchTotals(context.Background(), "client-1", testPeriod(t))
	if err != nil {
		t.Fatalf("FetchTotals: %v", err)
	}
	if *totals != (Totals{}) {
		t.Fatalf("no rows must yield zero totals, got %+v", totals)
	}
}

func TestFetchTotalsNullRates(t *testing.T) {
	row := totalsRow{
		Users:              40,
		Sessions:           55,
		EngagementRate:     cloudbigquery.NullFloat64{Float64: 0.62, Valid: true},
		BounceRate:         cloudbigquery.NullFloat64{}, // no sessions bucketed yet
		AvgSessionDuration: cloudbigquery.NullFloat64{},
		Conversions:        3,
	}
	svc := newStubService(&stubRunner{iters: []rowIterator{&stubIterator{rows: []any{row}}}})

	totals, err := svc.FetchTotals(context.Background(), "client-1", testPeriod(t))
	if err != nil {
		t.Fatalf("FetchTotals: %v", err)
	}
	if totals.Users != 40 || totals.Sessions != 55 || totals.Conversions != 3 {
		t.Fatalf("counts wrong: %+v", totals)
	}
	if totals.EngagementRate != 0.62 {
		t.Fatalf("valid rate must pass through, got %v", totals.EngagementRate)
	}
	if totals.BounceRate != 0 || totals.AvgSessionDuration != 0 {
		t.Fatalf("null rates must read as zero, got %+v", totals)
	}
}

func TestFetchTotalsValidation(t *testing.T) {
	svc := newStubService(&stubRunner{})

	_, err := svc.FetchTotals(context.Background(), "", testPeriod(t))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty client id, got %v", err)
	}

	period := testPeriod(t)
	period.Start, period.End = period.End, period.Start
	_, err = svc.FetchTotals(context.Background(), "client-1", period)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}

func TestFetchCharts(t *testing.T) {
	users := &stubIterator{rows: []any{
		map[string]cloudbigquery.Value{"day": "2026-08-01", "value": int64(12)},
		map[string]cloudbigquery.Value{"day": "2026-08-02", "value": int64(19)},
	}}
	channels := &stubIterator{rows: []any{
		labelRow{Label: "organic", Value: 30},
		labelRow{Label: "(none)", Value: 4},
	}}
	engagement := &stubIterator{rows: []any{
		map[string]cloudbigquery.Value{"day": "2026-08-01", "rate": 0.58},
		map[string]cloudbigquery.Value{"day": "2026-08-02", "rate": nil}, // no sessions that day
	}}
	runner := &stubRunner{iters: []rowIterator{users, channels, engagement}}
	svc := newStubService(runner)

	charts, err := svc.FetchCharts(context.Background(), "client-1", testPeriod(t))
	if err != nil {
		t.Fatalf("FetchCharts: %v", err)
	}
	if len(runner.sqls) != 3 {
		t.Fatalf("expected three chart queries, ran %d", len(runner.sqls))
	}

	if len(charts.UsersOverTime) != 2 || charts.UsersOverTime[1].Value != 19 {
		t.Fatalf("users series wrong: %+v", charts.UsersOverTime)
	}
	if charts.UsersOverTime[0].Date != "2026-08-01" {
		t.Fatalf("series day wrong: %+v", charts.UsersOverTime[0])
	}
	if len(charts.SessionsByChannel) != 2 || charts.SessionsByChannel[0].Label != "organic" {
		t.Fatalf("channel slices wrong: %+v", charts.SessionsByChannel)
	}
	if charts.EngagementTrend[0].Value != 0.58 {
		t.Fatalf("float rate wrong: %+v", charts.EngagementTrend[0])
	}
	if charts.EngagementTrend[1].Value != 0 {
		t.Fatalf("null rate must read as zero, got %+v", charts.EngagementTrend[1])
	}
}

func TestFetchChartsQueryError(t *testing.T) {
	svc := newStubService(&stubRunner{err: errors.New("bigquery unavailable")})

	_, err := svc.FetchCharts(context.Background(), "client-1", testPeriod(t))
	if err == nil {
		t.Fatal("expected the query error to surface")
	}
}
