package visibility

import (
	"encoding/json"
	"fmt"
	"sort"

	dbtypes "github.com/agencypulse/reporting-backend/pkg/db/types"
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// KPISelectionPayload is the wire/storage shape of a saved selection, the
// `kpi_selection` JSON carried by a dashboard link. Nil slices serialize as
// JSON null and MUST stay nil through round trips: null means "never saved,
// show everything", an empty array means "explicitly hidden everything".
type KPISelectionPayload struct {
	SelectedKPIs            []string        `json:"selected_kpis"`
	SelectedPerformanceKPIs []string        `json:"selected_performance_kpis"`
	VisibleSections         []string        `json:"visible_sections"`
	SelectedCharts          []string        `json:"selected_charts"`
	ShowChangePeriod        map[string]bool `json:"show_change_period,omitempty"`
}

// Snapshot is the immutable public-side selection the resolver reads in
// public mode. Each set field is tri-state: nil (show all), empty (show
// none), populated (membership).
type Snapshot struct {
	kpis            membershipSet
	performanceKPIs membershipSet
	sections        membershipSet
	charts          membershipSet
	changePeriod    map[string]bool
}

// membershipSet keeps the nil/empty distinction a plain map would lose.
type membershipSet struct {
	unset   bool
	members map[string]struct{}
}

func newMembershipSet(keys []string) membershipSet {
	if keys == nil {
		return membershipSet{unset: true}
	}
	members := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		members[key] = struct{}{}
	}
	return membershipSet{members: members}
}

// visible applies the tri-state rule for a single key.
func (m membershipSet) visible(key string) bool {
	if m.unset {
		return true
	}
	if len(m.members) == 0 {
		return false
	}
	_, ok := m.members[key]
	return ok
}

// NewSnapshot builds a snapshot from a stored selection payload. A nil
// payload (link saved without any selection) behaves as all-nil fields:
// everything visible.
func NewSnapshot(payload *KPISelectionPayload) *Snapshot {
	if payload == nil {
		payload = &KPISelectionPayload{}
	}
	var changePeriod map[string]bool
	if payload.ShowChangePeriod != nil {
		changePeriod = make(map[string]bool, len(payload.ShowChangePeriod))
		for key, value := range payload.ShowChangePeriod {
			changePeriod[key] = value
		}
	}
	return &Snapshot{
		kpis:            newMembershipSet(payload.SelectedKPIs),
		performanceKPIs: newMembershipSet(payload.SelectedPerformanceKPIs),
		sections:        newMembershipSet(payload.VisibleSections),
		charts:          newMembershipSet(payload.SelectedCharts),
		changePeriod:    changePeriod,
	}
}

// ParseSnapshot decodes the stored kpi_selection column. A SQL NULL or JSON
// null column yields the default-open snapshot.
func ParseSnapshot(raw dbtypes.JSONText) (*Snapshot, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return NewSnapshot(nil), nil
	}
	var payload KPISelectionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding kpi selection: %w", err)
	}
	return NewSnapshot(&payload), nil
}

// changePeriodVisible applies the default-show rule: only a present false hides.
func (s *Snapshot) changePeriodVisible(section enums.SectionID) bool {
	if s == nil || s.changePeriod == nil {
		return true
	}
	value, ok := s.changePeriod[section.Canonical().String()]
	if !ok {
		return true
	}
	return value
}

// PayloadFromSelection serializes admin selection state for persistence on a
// dashboard link. The produced slices are always non-nil: a saved selection is
// by definition explicit, so an empty set must persist as [] rather than null.
func PayloadFromSelection(selection *Selection) *KPISelectionPayload {
	if selection == nil {
		return nil
	}
	payload := &KPISelectionPayload{
		SelectedKPIs:            sortedKeys(selection.KPIs),
		SelectedPerformanceKPIs: sortedKeys(selection.PerformanceKPIs),
		VisibleSections:         sortedSectionKeys(selection.Sections),
		SelectedCharts:          sortedKeys(selection.Charts),
	}
	if len(selection.ShowChangePeriod) > 0 {
		payload.ShowChangePeriod = make(map[string]bool, len(selection.ShowChangePeriod))
		for section, show := range selection.ShowChangePeriod {
			payload.ShowChangePeriod[section.String()] = show
		}
	}
	return payload
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedSectionKeys(set map[enums.SectionID]struct{}) []string {
	keys := make([]string, 0, len(set))
	for section := range set {
		keys = append(keys, section.String())
	}
	sort.Strings(keys)
	return keys
}
