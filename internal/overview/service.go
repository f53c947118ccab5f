package overview

import (
	"context"
	"fmt"
	"strings"

	"github.com/agencypulse/reporting-backend/internal/dashboard"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
)

const systemPrompt = "You are a marketing analyst writing for an agency's client. " +
	"Summarize the reporting period in two short paragraphs of plain prose. " +
	"Lead with the most significant movement, mention concrete numbers, and " +
	"avoid bullet points, headers, and hedging."

// Overview is a generated executive summary with the metrics it was built from.
type Overview struct {
	ExecutiveSummary string                                   `json:"executive_summary"`
	Metrics          []dashboard.KPIValue                     `json:"metrics"`
	MetricsBySource  map[enums.KPISource][]dashboard.KPIValue `json:"metrics_by_source"`
}

type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// Service generates AI executive summaries from composed dashboard payloads.
type Service interface {
	GenerateOverview(ctx context.Context, payload *dashboard.Payload) (*Overview, error)
}

type service struct {
	chat completer
	logg *logger.Logger
}

// NewService builds the overview generator from OpenAI config.
func NewService(cfg config.OpenAIConfig, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	chat, err := newChatClient(cfg)
	if err != nil {
		return nil, err
	}
	return &service{chat: chat, logg: logg}, nil
}

func (s *service) GenerateOverview(ctx context.Context, payload *dashboard.Payload) (*Overview, error) {
	if payload == nil || len(payload.KPIs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no metrics to summarize")
	}

	summary, err := s.chat.complete(ctx, systemPrompt, buildPrompt(payload))
	if err != nil {
		s.logg.Error(ctx, "overview generation failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generating overview")
	}
	if summary == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "overview generation returned empty summary")
	}

	return &Overview{
		ExecutiveSummary: summary,
		Metrics:          payload.KPIs,
		MetricsBySource:  payload.KPIsBySource(),
	}, nil
}

// buildPrompt renders the payload as a compact metric table the model can
// reason over without seeing raw JSON.
func buildPrompt(payload *dashboard.Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reporting period: %s to %s.\n", payload.StartDate, payload.EndDate)
	b.WriteString("Metrics (current value, change vs prior period):\n")
	for _, kpi := range payload.KPIs {
		fmt.Fprintf(&b, "- %s [%s]: %s", kpi.Label, kpi.Source, formatValue(kpi.Value))
		if kpi.ChangePct != nil {
			fmt.Fprintf(&b, " (%+.1f%%)", *kpi.ChangePct)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
