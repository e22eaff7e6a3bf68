// Package overrides loads curator-authored correction files and applies
// them to the catalog through the allow-listed field gate.
package overrides

import (
	"encoding/json"
	"os"
	"strings"

	"romcat/internal/services"
)

// Entry is one curator correction from an override file. Either EntityID
// pins a single row, or Platform plus DATNamePattern select every entity
// whose media came from a matching DAT entry.
type Entry struct {
	EntityType     string `json:"entity_type"`
	EntityID       string `json:"entity_id"`
	Platform       string `json:"platform"`
	DATNamePattern string `json:"dat_name_pattern"`
	Field          string `json:"field"`
	Value          string `json:"value"`
	Reason         string `json:"reason"`
}

// Load reads an override file. The file may be a bare JSON array or an
// object with an "overrides" field, with or without a UTF-8 BOM.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFormat, "overrides", "load", "read "+path, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, services.Wrap(services.ErrFormat, "overrides", "load", "parse "+path, err)
	}
	return entries, nil
}

// Parse decodes override entries from raw JSON.
func Parse(data []byte) ([]Entry, error) {
	data = trimUTF8BOM(data)
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var entries []Entry
	if data[0] == '{' {
		var wrapper struct {
			Overrides []Entry `json:"overrides"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		entries = wrapper.Overrides
	} else {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
	}

	normalized := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entry.normalize()
		normalized = append(normalized, entry)
	}
	return normalized, nil
}

func (e *Entry) normalize() {
	e.EntityType = strings.ToLower(strings.TrimSpace(e.EntityType))
	e.EntityID = strings.TrimSpace(e.EntityID)
	e.Platform = strings.TrimSpace(e.Platform)
	e.DATNamePattern = strings.TrimSpace(e.DATNamePattern)
	e.Field = strings.ToLower(strings.TrimSpace(e.Field))
	e.Value = strings.TrimSpace(e.Value)
	e.Reason = strings.TrimSpace(e.Reason)
}

// targeted reports whether the entry names anything to apply to.
func (e *Entry) targeted() bool {
	if e.EntityID != "" {
		return true
	}
	return e.Platform != "" && e.DATNamePattern != ""
}

func trimUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
