package visibility

import (
	"encoding/json"
	"testing"

	dbtypes "github.com/agencypulse/reporting-backend/pkg/db/types"
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

func TestParseSnapshotPreservesTriState(t *testing.T) {
	t.Run("sql null means show everything", func(t *testing.T) {
		snapshot, err := ParseSnapshot(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resolver := NewPublicResolver(testCatalog(), snapshot)
		if !resolver.KPIVisible("users") || !resolver.SectionVisible(enums.SectionWebAnalytics) {
			t.Fatal("null column must behave as default-open")
		}
	})

	t.Run("json null fields mean show everything", func(t *testing.T) {
		raw := dbtypes.JSONText(`{"selected_kpis":null,"visible_sections":null,"selected_charts":null,"selected_performance_kpis":null}`)
		snapshot, err := ParseSnapshot(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resolver := NewPublicResolver(testCatalog(), snapshot)
		if !resolver.KPIVisible("bounce_rate") || !resolver.ChartVisible("rank_trend") {
			t.Fatal("null fields must behave as default-open")
		}
	})

	t.Run("empty arrays mean show nothing", func(t *testing.T) {
		raw := dbtypes.JSONText(`{"selected_kpis":[],"visible_sections":[],"selected_charts":[],"selected_performance_kpis":[]}`)
		snapshot, err := ParseSnapshot(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resolver := NewPublicResolver(testCatalog(), snapshot)
		if resolver.KPIVisible("users") || resolver.SectionVisible(enums.SectionWebAnalytics) || resolver.ChartVisible("rank_trend") {
			t.Fatal("empty arrays must behave as show-none")
		}
	})

	t.Run("malformed json errors", func(t *testing.T) {
		if _, err := ParseSnapshot(dbtypes.JSONText(`{"selected_kpis":`)); err == nil {
			t.Fatal("expected decode error")
		}
	})
}

func TestPayloadFromSelectionIsExplicit(t *testing.T) {
	selection := NewSelection()
	payload := PayloadFromSelection(selection)

	// A saved selection is explicit: empty sets must serialize as [] not null.
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"selected_kpis", "visible_sections", "selected_charts", "selected_performance_kpis"} {
		if string(decoded[field]) != "[]" {
			t.Fatalf("field %s should serialize as [], got %s", field, decoded[field])
		}
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	catalog := testCatalog()
	selection := NewSelection()
	selection.SetSection(catalog, enums.SectionWebAnalytics, true)
	selection.SetChangePeriod(enums.SectionWebAnalytics, false)

	payload := PayloadFromSelection(selection)
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	snapshot, err := ParseSnapshot(dbtypes.JSONText(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	resolver := NewPublicResolver(catalog, snapshot)

	if !resolver.KPIVisible("users") {
		t.Fatal("saved kpi must stay visible through round trip")
	}
	if resolver.KPIVisible("avg_keyword_rank") {
		t.Fatal("unsaved kpi must stay hidden through round trip")
	}
	if !resolver.SectionVisible(enums.SectionWebAnalytics) {
		t.Fatal("saved section must stay visible")
	}
	if resolver.SectionVisible(enums.SectionSEOPerformance) {
		t.Fatal("unsaved section must stay hidden")
	}
	if resolver.ChangePeriodVisible(enums.SectionWebAnalytics) {
		t.Fatal("saved false change-period must hide deltas")
	}
	if !resolver.ChangePeriodVisible(enums.SectionSEOPerformance) {
		t.Fatal("unsaved section defaults to showing deltas")
	}
}

func TestDefaultSelectionCoversCatalog(t *testing.T) {
	catalog := testCatalog()
	selection := DefaultSelection(catalog)

	for _, kpi := range catalog.KPIs() {
		if _, ok := selection.KPIs[kpi.Key]; !ok {
			t.Fatalf("default selection missing kpi %s", kpi.Key)
		}
		if _, ok := selection.PerformanceKPIs[kpi.Key]; !ok {
			t.Fatalf("default selection missing performance kpi %s", kpi.Key)
		}
	}
	for _, section := range enums.SectionIDs() {
		if _, ok := selection.Sections[section]; !ok {
			t.Fatalf("default selection missing section %s", section)
		}
	}
	if len(selection.Charts) == 0 {
		t.Fatal("default selection should include charts")
	}
}
