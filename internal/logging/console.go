package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one line per record:
//
//	2026-03-14T09:30:00Z WARN  ingest [JP batch.json#3 minecraft] record dropped (record_dropped) reason=...
//
// The bracketed subject is built from the region, file, record index and app
// id fields, and the event type follows the message. Everything else trails
// as key=value pairs in the order it was added.
type consoleHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Leveler
	source bool
	group  string
	fields []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(out io.Writer, level slog.Leveler, source bool) *consoleHandler {
	return &consoleHandler{mu: new(sync.Mutex), out: out, level: level, source: source}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := slices.Clone(h.fields)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.group, a)
		return true
	})
	var line consoleLine
	for _, f := range fields {
		line.add(f)
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s ", ts.UTC().Format(time.RFC3339), r.Level.String())
	if line.component != "" {
		b.WriteString(line.component)
		b.WriteByte(' ')
	}
	if subject := line.subject(); subject != "" {
		b.WriteString("[" + subject + "] ")
	}
	if msg := strings.TrimSpace(r.Message); msg != "" {
		b.WriteString(msg)
	} else {
		b.WriteString("-")
	}
	if line.event != "" {
		b.WriteString(" (" + line.event + ")")
	}
	for _, pair := range line.rest {
		b.WriteByte(' ')
		b.WriteString(pair)
	}
	if h.source {
		if src := r.Source(); src != nil && src.File != "" {
			b.WriteString(" @" + sourceRef(src))
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = slices.Clone(h.fields)
	for _, a := range attrs {
		next.fields = appendField(next.fields, h.group, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = joinKey(h.group, name)
	return &next
}

func appendField(dst []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if v.Kind() == slog.KindGroup {
		for _, member := range v.Group() {
			dst = appendField(dst, key, member)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}
	return append(dst, field{key: key, value: v})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// consoleLine sorts a record's fields into the promoted slots and the tail.
type consoleLine struct {
	component string
	region    string
	file      string
	index     string
	app       string
	event     string
	rest      []string
}

func (l *consoleLine) add(f field) {
	switch f.key {
	case FieldComponent:
		l.component = f.value.String()
	case FieldRegion:
		l.region = f.value.String()
	case FieldFile:
		l.file = f.value.String()
	case FieldRecordIndex:
		l.index = f.value.String()
	case FieldAppID:
		l.app = f.value.String()
	case FieldEventType:
		l.event = f.value.String()
	default:
		l.rest = append(l.rest, f.key+"="+renderValue(f.value))
	}
}

func (l consoleLine) subject() string {
	parts := make([]string, 0, 3)
	if l.region != "" {
		parts = append(parts, l.region)
	}
	switch {
	case l.file != "" && l.index != "":
		parts = append(parts, l.file+"#"+l.index)
	case l.file != "":
		parts = append(parts, l.file)
	case l.index != "":
		parts = append(parts, "#"+l.index)
	}
	if l.app != "" {
		parts = append(parts, l.app)
	}
	return strings.Join(parts, " ")
}

// renderValue prints v for a key=value tail, quoting anything empty or
// containing spaces, '=' or '"'. String lists are joined with commas.
func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			s = x.Error()
		case []string:
			s = strings.Join(x, ",")
		default:
			s = fmt.Sprint(x)
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
