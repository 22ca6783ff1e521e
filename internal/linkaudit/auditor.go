package linkaudit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"appcatalog/internal/config"
	"appcatalog/internal/logging"
)

// WellKnownPath is where a host publishes its app-site association file.
const WellKnownPath = "/.well-known/apple-app-site-association"

const (
	defaultTimeout     = 8 * time.Second
	defaultMaxHosts    = 4
	defaultConcurrency = 8
	samplePathLimit    = 6
	maxDocumentBytes   = 1 << 20
)

// Status is the audit verdict for one app.
type Status string

const (
	StatusOK      Status = "OK"
	StatusNoPaths Status = "OK_NO_PATHS"
	StatusNoUL    Status = "NO_UL"
)

// Row is one line of audit output.
type Row struct {
	AppID          string
	AppName        string
	URL            string
	Status         Status
	Host           string
	SamplePatterns string
}

// Options configures an Auditor.
type Options struct {
	Timeout     time.Duration
	MaxHosts    int
	Concurrency int
	UserAgent   string
	Client      *http.Client
	// BaseURL returns the scheme and authority probed for host. Defaults to
	// "https://" + host.
	BaseURL func(host string) string
	Logger  *slog.Logger
}

// OptionsFromConfig derives auditor options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		Timeout:     time.Duration(cfg.Audit.TimeoutSeconds) * time.Second,
		MaxHosts:    cfg.Audit.MaxHosts,
		Concurrency: cfg.Audit.Concurrency,
		UserAgent:   cfg.Audit.UserAgent,
	}
}

// Auditor probes the association files behind each app's universal links.
type Auditor struct {
	opts   Options
	logger *slog.Logger
}

// New returns an Auditor with defaults filled in.
func New(opts Options) *Auditor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxHosts <= 0 {
		opts.MaxHosts = defaultMaxHosts
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.BaseURL == nil {
		opts.BaseURL = func(host string) string { return "https://" + host }
	}
	return &Auditor{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "linkaudit")}
}

// Audit checks every app and returns one row per app in input order. Apps
// are audited concurrently; hosts of a single app are tried in order and the
// first host that answers decides the status.
func (a *Auditor) Audit(ctx context.Context, apps []App) ([]Row, error) {
	rows := make([]Row, len(apps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for i, app := range apps {
		g.Go(func() error {
			row, err := a.auditApp(ctx, app)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *Auditor) auditApp(ctx context.Context, app App) (Row, error) {
	row := Row{AppID: app.ID, AppName: app.Name, Status: StatusNoUL}
	if len(app.UniversalLinks) > 0 {
		row.URL = app.UniversalLinks[0]
	}
	for _, host := range CandidateHosts(app, a.opts.MaxHosts) {
		if err := ctx.Err(); err != nil {
			return Row{}, err
		}
		doc, err := a.fetch(ctx, host)
		if err != nil {
			logging.WarnWithContext(a.logger, "association file unavailable", "aasa_fetch_failed",
				logging.String(logging.FieldAppID, app.ID),
				logging.String("host", host),
				logging.String("url", a.opts.BaseURL(host)+WellKnownPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "next candidate host is tried"))
			continue
		}
		row.Host = host
		row.SamplePatterns = SamplePaths(doc)
		if row.SamplePatterns != "" {
			row.Status = StatusOK
		} else {
			row.Status = StatusNoPaths
		}
		return row, nil
	}
	return row, nil
}

func (a *Auditor) fetch(ctx context.Context, host string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.opts.BaseURL(host)+WellKnownPath, nil)
	if err != nil {
		return nil, err
	}
	if a.opts.UserAgent != "" {
		req.Header.Set("User-Agent", a.opts.UserAgent)
	}
	resp, err := a.opts.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, errors.New("empty response")
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return doc, nil
}

// SamplePaths returns up to six paths of the first applinks detail that
// declares any, joined by ";".
func SamplePaths(doc map[string]any) string {
	applinks, _ := doc["applinks"].(map[string]any)
	details, _ := applinks["details"].([]any)
	for _, detail := range details {
		entry, ok := detail.(map[string]any)
		if !ok {
			continue
		}
		paths, _ := entry["paths"].([]any)
		if len(paths) == 0 {
			continue
		}
		if len(paths) > samplePathLimit {
			paths = paths[:samplePathLimit]
		}
		parts := make([]string, 0, len(paths))
		for _, path := range paths {
			parts = append(parts, fmt.Sprint(path))
		}
		return strings.Join(parts, ";")
	}
	return ""
}
