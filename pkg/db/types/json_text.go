package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONText stores raw JSON in a jsonb column while keeping the distinction
// between SQL NULL and an explicit JSON value intact.
type JSONText json.RawMessage

func (j *JSONText) Scan(src any) error {
	if src == nil {
		*j = nil
		return nil
	}

	switch v := src.(type) {
	case []byte:
		buf := make([]byte, len(v))
		copy(buf, v)
		*j = buf
		return nil
	case string:
		*j = JSONText(v)
		return nil
	default:
		return fmt.Errorf("JSONText: unsupported Scan type %T", src)
	}
}

func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	if !json.Valid(j) {
		return nil, fmt.Errorf("JSONText: invalid json payload")
	}
	return []byte(j), nil
}

// MarshalJSON emits the raw payload, or null when unset.
func (j JSONText) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores the raw payload verbatim.
func (j *JSONText) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("JSONText: UnmarshalJSON on nil pointer")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	*j = buf
	return nil
}
