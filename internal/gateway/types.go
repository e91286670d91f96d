package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies an extension in the remote store.
//
// The store assigns ids; some JSON stores emit them as numeric strings, so
// decoding accepts both 3 and "3".
type ID int64

// UnmarshalJSON accepts a JSON number or a string holding a base-10 integer.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("decode id %q: %w", s, err)
		}
		*id = ID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n)
	return nil
}

// ParseID parses a base-10 id as typed on a command line.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid extension id %q", s)
	}
	return ID(n), nil
}

// String returns the decimal form used in request paths.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Extension mirrors a record returned by the extensions resource.
type Extension struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	IsActive    bool   `json:"isActive"`
}

// statusPatch is the PATCH body for status updates.
type statusPatch struct {
	IsActive bool `json:"isActive"`
}
