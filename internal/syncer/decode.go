package syncer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Tiliavir/tutor-hub/internal/model"
)

// object decodes a JSON object response.
func object(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return obj, nil
}

// list decodes a JSON array, or a paginated {"results": [...]} page.
func list(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if trimmed[0] == '{' {
		var page struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("decoding response page: %w", err)
		}
		return page.Results, nil
	}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decoding response list: %w", err)
	}
	return items, nil
}

// idOf returns the "id" of a response object, or "".
func idOf(obj map[string]json.RawMessage) model.ID {
	raw, ok := obj["id"]
	if !ok {
		return ""
	}
	var id model.ID
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

// text renders a scalar (or a list of scalars) as the string form used in
// editable fields.
func text(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				if s := text(it); s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ", ")
		}
	}
	return string(trimmed)
}

// resource builds an editable resource from a server object. Only the
// schema's fields are kept; the file field becomes a remote reference.
func resource(schema model.Schema, key string, raw json.RawMessage) (model.Resource, error) {
	obj, err := object(raw)
	if err != nil {
		return model.Resource{}, err
	}
	r := model.Resource{Key: key, ID: idOf(obj), Fields: make(map[string]string, len(schema.Fields))}
	for _, f := range schema.Fields {
		r.Fields[f] = text(obj[f])
	}
	if schema.FileField != "" {
		if url := text(obj[schema.FileField]); url != "" {
			r.Attachment = model.RemoteRef(url)
		}
	}
	return r, nil
}
