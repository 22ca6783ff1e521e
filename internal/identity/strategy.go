package identity

import (
	"fmt"
	"strings"

	"appcatalog/internal/catalog"
	"appcatalog/internal/textutil"
)

// Signal names one identity strategy.
type Signal string

const (
	SignalID    Signal = "id"
	SignalName  Signal = "name"
	SignalAlias Signal = "alias"
	SignalHost  Signal = "host"
)

// DefaultPriority is the lookup order used when none is configured.
var DefaultPriority = []Signal{SignalID, SignalName, SignalAlias, SignalHost}

// Match is a resolved identity.
type Match struct {
	ID     string
	Signal Signal
	// Key is the lookup key that hit.
	Key string
}

// Strategy returns at most one candidate for draft.
type Strategy func(idx *Index, draft catalog.Record) (Match, bool)

// MatchByID looks up the draft id exactly.
func MatchByID(idx *Index, draft catalog.Record) (Match, bool) {
	return lookup(idx, SignalID, strings.TrimSpace(draft.ID))
}

// MatchByName looks up the lower-cased draft name among catalog names.
func MatchByName(idx *Index, draft catalog.Record) (Match, bool) {
	return lookup(idx, SignalName, textutil.FoldKey(draft.Name))
}

// MatchByAlias looks up each draft alias, in order, among catalog aliases.
func MatchByAlias(idx *Index, draft catalog.Record) (Match, bool) {
	for _, alias := range draft.Aliases {
		if m, ok := lookup(idx, SignalAlias, textutil.FoldKey(alias)); ok {
			return m, true
		}
	}
	return Match{}, false
}

// MatchByHost looks up each draft web host, in order, among catalog hosts.
func MatchByHost(idx *Index, draft catalog.Record) (Match, bool) {
	for _, host := range draft.WebHosts {
		if m, ok := lookup(idx, SignalHost, textutil.FoldKey(host)); ok {
			return m, true
		}
	}
	return Match{}, false
}

// StrategyFor returns the strategy for signal.
func StrategyFor(signal Signal) (Strategy, bool) {
	switch signal {
	case SignalID:
		return MatchByID, true
	case SignalName:
		return MatchByName, true
	case SignalAlias:
		return MatchByAlias, true
	case SignalHost:
		return MatchByHost, true
	default:
		return nil, false
	}
}

// ParsePriority converts configured signal names into a priority list. An
// empty list yields DefaultPriority. Unknown or repeated signals are errors,
// and id must come first.
func ParsePriority(names []string) ([]Signal, error) {
	if len(names) == 0 {
		return append([]Signal(nil), DefaultPriority...), nil
	}
	seen := make(map[Signal]struct{}, len(names))
	out := make([]Signal, 0, len(names))
	for _, name := range names {
		signal := Signal(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := StrategyFor(signal); !ok {
			return nil, fmt.Errorf("unknown match signal %q", name)
		}
		if _, dup := seen[signal]; dup {
			return nil, fmt.Errorf("match signal %q listed twice", signal)
		}
		seen[signal] = struct{}{}
		out = append(out, signal)
	}
	if out[0] != SignalID {
		return nil, fmt.Errorf("match priority must start with %q", SignalID)
	}
	return out, nil
}

func lookup(idx *Index, signal Signal, key string) (Match, bool) {
	if idx == nil || key == "" {
		return Match{}, false
	}
	id, ok := idx.table(signal)[key]
	if !ok {
		return Match{}, false
	}
	return Match{ID: id, Signal: signal, Key: key}, true
}
