package normalize

import (
	"fmt"
	"strings"

	"appcatalog/internal/catalog"
	"appcatalog/internal/config"
	"appcatalog/internal/textutil"
)

// Defaults applied when the matching Options field is empty.
const (
	DefaultSymbol        = "app.fill"
	DefaultVia           = "manus"
	DefaultSlugMaxLength = 64
	DefaultDigestPrefix  = "app-"
)

// Options controls field defaults and id synthesis.
type Options struct {
	// Region is recorded as provenance when a record names no region.
	Region        string
	DefaultSymbol string
	DefaultVia    string
	SlugMaxLength int
	DigestPrefix  string
}

// OptionsFromConfig derives normalizer options from the catalog section of
// cfg. Region is left for the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		DefaultSymbol: cfg.Catalog.DefaultSymbol,
		DefaultVia:    cfg.Catalog.DefaultVia,
		SlugMaxLength: cfg.Catalog.SlugMaxLength,
		DigestPrefix:  cfg.Catalog.DigestPrefix,
	}
}

// Normalizer converts raw records into canonical drafts.
type Normalizer struct {
	opts Options
}

// New returns a Normalizer with empty options replaced by defaults.
func New(opts Options) *Normalizer {
	if strings.TrimSpace(opts.DefaultSymbol) == "" {
		opts.DefaultSymbol = DefaultSymbol
	}
	if strings.TrimSpace(opts.DefaultVia) == "" {
		opts.DefaultVia = DefaultVia
	}
	if opts.SlugMaxLength <= 0 {
		opts.SlugMaxLength = DefaultSlugMaxLength
	}
	if opts.DigestPrefix == "" {
		opts.DigestPrefix = DefaultDigestPrefix
	}
	opts.Region = strings.ToUpper(strings.TrimSpace(opts.Region))
	return &Normalizer{opts: opts}
}

// Options returns the effective options.
func (n *Normalizer) Options() Options { return n.opts }

// Normalize builds a draft record from raw. It fails with
// catalog.ErrMissingRequiredField when neither an id nor any name, alias, or
// host is available to derive one.
func (n *Normalizer) Normalize(raw catalog.RawRecord) (catalog.Record, error) {
	rec := catalog.Record{
		ID:             strings.TrimSpace(string(raw.ID)),
		Name:           strings.TrimSpace(string(raw.Name)),
		Symbol:         strings.TrimSpace(string(raw.Symbol)),
		Schemes:        catalog.Unique(raw.Schemes),
		UniversalLinks: catalog.Unique(raw.UniversalLinks),
		WebHosts:       catalog.MapUnique(raw.WebHosts, strings.ToLower),
		Aliases:        catalog.Unique(raw.Aliases),
		Categories:     catalog.MapUnique(raw.Categories, strings.ToLower),
		Source: catalog.Source{
			Regions: catalog.MapUnique(raw.Source.RegionCodes(), strings.ToUpper),
			Via:     catalog.Unique(raw.Source.Via),
		},
	}

	if rec.Name == "" && len(rec.Aliases) > 0 {
		rec.Name = rec.Aliases[0]
	}
	if rec.Symbol == "" {
		rec.Symbol = n.opts.DefaultSymbol
	}
	if len(rec.Source.Regions) == 0 && n.opts.Region != "" {
		rec.Source.Regions = []string{n.opts.Region}
	}
	if len(rec.Source.Via) == 0 {
		rec.Source.Via = []string{n.opts.DefaultVia}
	}
	rec.EnforceInvariants()

	if rec.ID == "" {
		id, err := n.SynthesizeID(rec.Name, rec.WebHosts)
		if err != nil {
			return catalog.Record{}, err
		}
		rec.ID = id
	}
	return rec, nil
}

// SynthesizeID derives an id from name, or from the first host when name is
// empty. The result depends only on its inputs.
func (n *Normalizer) SynthesizeID(name string, hosts []string) (string, error) {
	if name = strings.TrimSpace(name); name != "" {
		if slug := textutil.Slug(name, n.opts.SlugMaxLength); slug != "" {
			return slug, nil
		}
		return textutil.Digest(name, n.opts.DigestPrefix), nil
	}
	for _, host := range hosts {
		if host = strings.TrimSpace(host); host == "" {
			continue
		}
		if slug := textutil.Slug(host, n.opts.SlugMaxLength); slug != "" {
			return slug, nil
		}
		return textutil.Digest(host, n.opts.DigestPrefix), nil
	}
	return "", fmt.Errorf("%w: record has no id, name, alias, or host", catalog.ErrMissingRequiredField)
}

// Slug exposes the id slug rules used for synthesized ids.
func (n *Normalizer) Slug(name string) string {
	return textutil.Slug(name, n.opts.SlugMaxLength)
}
