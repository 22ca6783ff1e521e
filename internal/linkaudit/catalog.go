package linkaudit

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"appcatalog/internal/catalog"
	"appcatalog/internal/logging"
)

// App is the part of a catalog record the audit needs.
type App struct {
	ID             string
	Name           string
	UniversalLinks []string
	WebHosts       []string
}

// LoadCatalog reads one catalog file, either a bare array or an object
// holding the array under wrapperKey. Items that are not objects or lack an
// id or a name are skipped with a warning. An unreadable or unparseable file
// is returned as an error.
func LoadCatalog(path, wrapperKey string, logger *slog.Logger) ([]App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, catalog.Wrap(catalog.ErrIO, path, "read catalog", err)
	}
	items, err := catalog.DecodeDocument(data, wrapperKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	apps := make([]App, 0, len(items))
	for i, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			logging.WarnWithContext(logger, "skipping non-object catalog item", "audit_item_skipped",
				logging.String("catalog", path),
				logging.Int(logging.FieldRecordIndex, i))
			continue
		}
		raw, err := catalog.DecodeRawRecord(trimmed)
		if err != nil {
			logging.WarnWithContext(logger, "skipping undecodable catalog item", "audit_item_skipped",
				logging.String("catalog", path),
				logging.Int(logging.FieldRecordIndex, i),
				logging.Error(err))
			continue
		}
		app := App{
			ID:             strings.TrimSpace(string(raw.ID)),
			Name:           strings.TrimSpace(string(raw.Name)),
			UniversalLinks: nonEmpty(raw.UniversalLinks),
			WebHosts:       nonEmpty(raw.WebHosts),
		}
		if app.ID == "" || app.Name == "" {
			logging.WarnWithContext(logger, "skipping app without id or name", "audit_item_skipped",
				logging.String("catalog", path),
				logging.Int(logging.FieldRecordIndex, i))
			continue
		}
		apps = append(apps, app)
	}
	logger.Debug("loaded catalog for audit",
		logging.String("catalog", path),
		logging.Int("app_count", len(apps)))
	return apps, nil
}

// Dedupe drops every app whose id was already seen, keeping the first.
func Dedupe(apps []App) []App {
	seen := make(map[string]struct{}, len(apps))
	out := make([]App, 0, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.ID]; ok {
			continue
		}
		seen[app.ID] = struct{}{}
		out = append(out, app)
	}
	return out
}

// CandidateHosts lists the hosts probed for app: web hosts first, then the
// hosts of http and https universal links, without repeats, capped at max.
func CandidateHosts(app App, max int) []string {
	hosts := make([]string, 0, len(app.WebHosts)+len(app.UniversalLinks))
	hosts, _ = catalog.AppendUnique(hosts, app.WebHosts...)
	for _, link := range app.UniversalLinks {
		if host := linkHost(link); host != "" {
			hosts, _ = catalog.AppendUnique(hosts, host)
		}
	}
	if max > 0 && len(hosts) > max {
		hosts = hosts[:max]
	}
	return hosts
}

func linkHost(link string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(link, prefix); ok {
			host, _, _ := strings.Cut(rest, "/")
			return strings.TrimSpace(host)
		}
	}
	return ""
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
