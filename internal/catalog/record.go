package catalog

// Record is one application in a region's catalog. Every slice is a
// duplicate-free set kept in insertion order.
type Record struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	Schemes        []string `json:"schemes"`
	UniversalLinks []string `json:"universalLinks"`
	WebHosts       []string `json:"webHosts"`
	Aliases        []string `json:"aliases"`
	Categories     []string `json:"categories"`
	Source         Source   `json:"source"`
}

// Source records which regions and intake channels contributed to a record.
type Source struct {
	Regions []string `json:"regions"`
	Via     []string `json:"via"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.Schemes = cloneStrings(r.Schemes)
	out.UniversalLinks = cloneStrings(r.UniversalLinks)
	out.WebHosts = cloneStrings(r.WebHosts)
	out.Aliases = cloneStrings(r.Aliases)
	out.Categories = cloneStrings(r.Categories)
	out.Source.Regions = cloneStrings(r.Source.Regions)
	out.Source.Via = cloneStrings(r.Source.Via)
	return out
}

// EnforceInvariants restores the structural guarantees every stored record
// carries: the name is an alias, every universal link host is a web host, and
// set fields encode as arrays rather than null. It reports whether anything
// was added.
func (r *Record) EnforceInvariants() bool {
	changed := false
	if r.Name != "" {
		var added int
		r.Aliases, added = AppendUnique(r.Aliases, r.Name)
		changed = changed || added > 0
	}
	for _, link := range r.UniversalLinks {
		host := LinkHost(link)
		if host == "" {
			continue
		}
		var added int
		r.WebHosts, added = AppendUnique(r.WebHosts, host)
		changed = changed || added > 0
	}
	r.Schemes = nonNil(r.Schemes)
	r.UniversalLinks = nonNil(r.UniversalLinks)
	r.WebHosts = nonNil(r.WebHosts)
	r.Aliases = nonNil(r.Aliases)
	r.Categories = nonNil(r.Categories)
	r.Source.Regions = nonNil(r.Source.Regions)
	r.Source.Via = nonNil(r.Source.Via)
	return changed
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
