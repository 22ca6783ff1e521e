package catalog

import (
	"bytes"
	"encoding/json"
)

// RawRecord is a record as it arrives from pending files or older catalogs.
// Set fields accept a bare string or a list; anything else decodes as empty
// instead of failing the whole record.
type RawRecord struct {
	ID             Text       `json:"id"`
	Name           Text       `json:"name"`
	Symbol         Text       `json:"symbol"`
	Schemes        StringList `json:"schemes"`
	UniversalLinks StringList `json:"universalLinks"`
	WebHosts       StringList `json:"webHosts"`
	Aliases        StringList `json:"aliases"`
	Categories     StringList `json:"categories"`
	Source         RawSource  `json:"source"`
}

// RawSource accepts both the canonical {"regions": [...], "via": [...]} shape
// and the legacy {"country": "JP", "via": "manus"} shape.
type RawSource struct {
	Regions StringList `json:"regions"`
	Region  StringList `json:"region"`
	Country StringList `json:"country"`
	Via     StringList `json:"via"`
}

func (s *RawSource) UnmarshalJSON(data []byte) error {
	*s = RawSource{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	type plain RawSource
	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*s = RawSource(decoded)
	return nil
}

// RegionCodes returns every region hint in declaration order.
func (s RawSource) RegionCodes() []string {
	out := make([]string, 0, len(s.Regions)+len(s.Region)+len(s.Country))
	out = append(out, s.Regions...)
	out = append(out, s.Region...)
	out = append(out, s.Country...)
	return out
}

// FromRecord converts a stored record back into raw form so it can be
// re-normalized.
func FromRecord(r Record) RawRecord {
	return RawRecord{
		ID:             Text(r.ID),
		Name:           Text(r.Name),
		Symbol:         Text(r.Symbol),
		Schemes:        StringList(cloneStrings(r.Schemes)),
		UniversalLinks: StringList(cloneStrings(r.UniversalLinks)),
		WebHosts:       StringList(cloneStrings(r.WebHosts)),
		Aliases:        StringList(cloneStrings(r.Aliases)),
		Categories:     StringList(cloneStrings(r.Categories)),
		Source: RawSource{
			Regions: StringList(cloneStrings(r.Source.Regions)),
			Via:     StringList(cloneStrings(r.Source.Via)),
		},
	}
}

// Text is a scalar string field. A list decodes to its first string element;
// numbers, booleans and objects decode as "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var list StringList
	if err := list.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = ""
	if len(list) > 0 {
		*t = Text(list[0])
	}
	return nil
}

// StringList is a set field that tolerates scalar input.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*l = StringList{value}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		out := make(StringList, 0, len(items))
		for _, item := range items {
			var value string
			if err := json.Unmarshal(item, &value); err != nil {
				continue
			}
			out = append(out, value)
		}
		*l = out
	}
	return nil
}
