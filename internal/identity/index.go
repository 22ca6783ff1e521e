package identity

import (
	"appcatalog/internal/catalog"
	"appcatalog/internal/textutil"
)

// Index maps lookup keys to record ids for each identity signal. A key shared
// by several records belongs to the one that comes first in catalog order, so
// the owner does not depend on the order records were added.
type Index struct {
	byID    map[string]string
	byName  map[string]string
	byAlias map[string]string
	byHost  map[string]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		byID:    make(map[string]string),
		byName:  make(map[string]string),
		byAlias: make(map[string]string),
		byHost:  make(map[string]string),
	}
}

// BuildIndex indexes records.
func BuildIndex(records []catalog.Record) *Index {
	idx := NewIndex()
	for _, rec := range records {
		idx.Add(rec)
	}
	return idx
}

// Add registers every key of rec, taking over keys held by records that sort
// after it. Calling it again after rec gains aliases or hosts picks up the new
// keys.
func (x *Index) Add(rec catalog.Record) {
	if rec.ID == "" {
		return
	}
	claim(x.byID, rec.ID, rec.ID)
	claim(x.byName, textutil.FoldKey(rec.Name), rec.ID)
	for _, alias := range rec.Aliases {
		claim(x.byAlias, textutil.FoldKey(alias), rec.ID)
	}
	for _, host := range rec.WebHosts {
		claim(x.byHost, textutil.FoldKey(host), rec.ID)
	}
}

// Clone returns an independent copy.
func (x *Index) Clone() *Index {
	return &Index{
		byID:    cloneMap(x.byID),
		byName:  cloneMap(x.byName),
		byAlias: cloneMap(x.byAlias),
		byHost:  cloneMap(x.byHost),
	}
}

// Len returns the number of indexed ids.
func (x *Index) Len() int { return len(x.byID) }

func (x *Index) table(signal Signal) map[string]string {
	switch signal {
	case SignalID:
		return x.byID
	case SignalName:
		return x.byName
	case SignalAlias:
		return x.byAlias
	case SignalHost:
		return x.byHost
	default:
		return nil
	}
}

func claim(table map[string]string, key, id string) {
	if key == "" {
		return
	}
	if owner, taken := table[key]; taken && !catalog.IDLess(id, owner) {
		return
	}
	table[key] = id
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
