package merge

import (
	"strings"

	"appcatalog/internal/catalog"
)

// Reducer combines drafts with the records they resolve to.
type Reducer struct{}

// New returns a Reducer.
func New() *Reducer { return &Reducer{} }

// Merge folds src into dst and reports whether dst changed. Set fields
// become dst ∪ src with dst's order kept and new members appended; name and
// symbol are only filled when dst has none. Merging the same src twice
// changes nothing the second time.
func (r *Reducer) Merge(dst *catalog.Record, src catalog.Record) bool {
	if dst == nil {
		return false
	}
	added := 0
	union := func(field *[]string, values []string) {
		var n int
		*field, n = catalog.AppendUnique(*field, values...)
		added += n
	}

	if strings.TrimSpace(dst.Name) == "" && strings.TrimSpace(src.Name) != "" {
		dst.Name = strings.TrimSpace(src.Name)
		added++
	}
	if strings.TrimSpace(dst.Symbol) == "" && strings.TrimSpace(src.Symbol) != "" {
		dst.Symbol = strings.TrimSpace(src.Symbol)
		added++
	}

	union(&dst.Schemes, src.Schemes)
	union(&dst.UniversalLinks, src.UniversalLinks)
	union(&dst.WebHosts, src.WebHosts)
	union(&dst.Aliases, src.Aliases)
	union(&dst.Aliases, []string{src.Name})
	union(&dst.Categories, src.Categories)
	union(&dst.Source.Regions, src.Source.Regions)
	union(&dst.Source.Via, src.Source.Via)

	if dst.EnforceInvariants() {
		added++
	}
	return added > 0
}

// Admit turns an unmatched draft into a new catalog record.
func (r *Reducer) Admit(draft catalog.Record) catalog.Record {
	rec := draft.Clone()
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Schemes = catalog.Unique(rec.Schemes)
	rec.UniversalLinks = catalog.Unique(rec.UniversalLinks)
	rec.WebHosts = catalog.Unique(rec.WebHosts)
	rec.Aliases = catalog.Unique(rec.Aliases)
	rec.Categories = catalog.Unique(rec.Categories)
	rec.Source.Regions = catalog.Unique(rec.Source.Regions)
	rec.Source.Via = catalog.Unique(rec.Source.Via)
	rec.EnforceInvariants()
	return rec
}
