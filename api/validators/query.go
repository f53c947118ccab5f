package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryUUID parses an optional uuid query parameter; absent returns nil.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}

// ParseQueryDateRange reads the start/end report boundaries. Both keys are
// required together.
func ParseQueryDateRange(r *http.Request, startKey, endKey string) (types.DateRange, error) {
	start := strings.TrimSpace(r.URL.Query().Get(startKey))
	end := strings.TrimSpace(r.URL.Query().Get(endKey))
	if start == "" || end == "" {
		return types.DateRange{}, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required").
			WithDetails(map[string]any{"fields": []string{startKey, endKey}})
	}
	parsed, err := types.ParseDateRange(start, end)
	if err != nil {
		return types.DateRange{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date range")
	}
	return parsed, nil
}

// PathUUID parses a required uuid path segment already extracted by the router.
func PathUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
