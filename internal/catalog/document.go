package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultWrapperKey is the object field that holds the record array in
// wrapped documents.
const DefaultWrapperKey = "apps"

var errEmptyDocument = errors.New("document is empty")

// DecodeDocument splits a JSON document into its record items. Two top-level
// shapes are accepted: a bare array, or an object holding the array under
// wrapperKey. Any other shape, or invalid JSON, is ErrMalformedInput.
func DecodeDocument(data []byte, wrapperKey string) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(trimUTF8BOM(data))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, errEmptyDocument)
	}
	if wrapperKey == "" {
		wrapperKey = DefaultWrapperKey
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return items, nil
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		inner, ok := wrapper[wrapperKey]
		if !ok {
			return nil, fmt.Errorf("%w: object has no %q array", ErrMalformedInput, wrapperKey)
		}
		inner = bytes.TrimSpace(inner)
		if bytes.Equal(inner, []byte("null")) {
			return nil, nil
		}
		if len(inner) == 0 || inner[0] != '[' {
			return nil, fmt.Errorf("%w: field %q is not an array", ErrMalformedInput, wrapperKey)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return items, nil
	default:
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: top level must be an array or an object with %q", ErrMalformedInput, wrapperKey)
	}
}

// DecodeRawRecord decodes one item of a document. Items that are not JSON
// objects are rejected.
func DecodeRawRecord(item json.RawMessage) (RawRecord, error) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return RawRecord{}, fmt.Errorf("%w: record is not an object", ErrMalformedInput)
	}
	var raw RawRecord
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return RawRecord{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return raw, nil
}

// EncodeRecords renders records as the canonical catalog file: a 2-space
// indented array without HTML escaping, ending in a newline.
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func trimUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
