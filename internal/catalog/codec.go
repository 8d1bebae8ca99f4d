package catalog

import (
	"encoding/json"
	"fmt"
)

// List-valued fields (tags, highlights, images) are stored as JSON text in a
// single column. Encoding normalizes nil to an empty list so the stored form
// is always a JSON array, and decoding never returns nil.

// EncodeStringList serializes a list field for storage.
func EncodeStringList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list field: %w", err)
	}
	return string(raw), nil
}

// DecodeStringList deserializes a stored list field. Empty or blank storage
// decodes to an empty list.
func DecodeStringList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list field: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
