package enums

import "fmt"

// CampaignStatus maps to the campaign_status enum in Postgres.
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

var validCampaignStatuses = []CampaignStatus{
	CampaignStatusActive,
	CampaignStatusPaused,
	CampaignStatusCompleted,
}

// String implements fmt.Stringer.
func (c CampaignStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical campaign_status enum.
func (c CampaignStatus) IsValid() bool {
	for _, candidate := range validCampaignStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCampaignStatus converts raw input into CampaignStatus.
func ParseCampaignStatus(value string) (CampaignStatus, error) {
	for _, candidate := range validCampaignStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign status %q", value)
}

// SearchEngine maps to the search_engine enum in Postgres.
type SearchEngine string

const (
	SearchEngineGoogle SearchEngine = "google"
	SearchEngineBing   SearchEngine = "bing"
)

var validSearchEngines = []SearchEngine{
	SearchEngineGoogle,
	SearchEngineBing,
}

// String implements fmt.Stringer.
func (s SearchEngine) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical search_engine enum.
func (s SearchEngine) IsValid() bool {
	for _, candidate := range validSearchEngines {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSearchEngine converts raw input into SearchEngine.
func ParseSearchEngine(value string) (SearchEngine, error) {
	for _, candidate := range validSearchEngines {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid search engine %q", value)
}
