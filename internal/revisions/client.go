// Package revisions lists the revision history of a Google Drive document
// and fetches each revision's plain-text export.
package revisions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dgallion1/ideagraph/internal/metrics"
	"github.com/dgallion1/ideagraph/internal/stats"
)

// Placeholder is the content reported for revisions Drive cannot export
// as plain text.
const Placeholder = "(No plain text export available)"

const plainTextMIME = "text/plain"

var (
	ErrMissingToken = errors.New("missing access token")
	ErrMissingDocID = errors.New("missing document id")
)

// Revision is one historical snapshot with its exported text.
type Revision struct {
	ID           string `json:"id"`
	ModifiedTime string `json:"modifiedTime"`
	Content      string `json:"content"`
	Exported     bool   `json:"exported"`
}

// ExportError reports a failed plain-text export download. Body holds the
// start of the upstream response for logs; Error leaves it out.
type ExportError struct {
	RevisionID string
	StatusCode int
	Body       string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export revision %s: status %d", e.RevisionID, e.StatusCode)
}

// UpstreamStatus returns the HTTP status Drive answered with, if err
// carries one.
func UpstreamStatus(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	var xerr *ExportError
	if errors.As(err, &xerr) {
		return xerr.StatusCode, true
	}
	return 0, false
}

// Config tunes the client. Zero values pick defaults.
type Config struct {
	Endpoint       string        // Drive API base URL, for tests and proxies
	Concurrency    int           // parallel export downloads
	MaxExportBytes int64         // per-revision export cap
	Timeout        time.Duration // per HTTP request
	HTTPClient     *http.Client  // base transport; bearer auth is layered on top
}

// Client calls the Drive v3 API on behalf of a token holder.
type Client struct {
	cfg        Config
	httpClient *http.Client
	latency    *stats.Latency
	metrics    *metrics.Metrics
	log        *slog.Logger
}

func NewClient(cfg Config, latency *stats.Latency, m *metrics.Metrics, log *slog.Logger) *Client {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxExportBytes <= 0 {
		cfg.MaxExportBytes = 10 << 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if latency == nil {
		latency = stats.NewLatency(time.Hour)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		cfg:        cfg,
		httpClient: hc,
		latency:    latency,
		metrics:    m,
		log:        log,
	}
}

// Latency returns the rolling window of Drive call durations.
func (c *Client) Latency() *stats.Latency {
	return c.latency
}

var docIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
var bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ExtractDocID accepts a bare document ID or a Docs/Drive link containing
// "/d/<id>" and returns the ID, or "" if ref holds neither.
func ExtractDocID(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "/d/") {
		if m := docIDPattern.FindStringSubmatch(ref); m != nil {
			return m[1]
		}
		return ""
	}
	if !bareIDPattern.MatchString(ref) {
		return ""
	}
	return ref
}

// List returns every revision of the referenced document, oldest first as
// Drive orders them, with plain-text content or Placeholder.
func (c *Client) List(ctx context.Context, accessToken, docRef string) ([]Revision, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrMissingToken
	}
	docID := ExtractDocID(docRef)
	if docID == "" {
		return nil, ErrMissingDocID
	}
	log := c.log.With("doc_id", docID)

	hc := c.authorized(ctx, accessToken)

	start := time.Now()
	metas, err := c.listMeta(ctx, hc, docID)
	c.latency.Since(start, err)
	c.metrics.ObserveDrive("list", time.Since(start).Seconds())
	if err != nil {
		c.metrics.ObserveListing(err)
		log.Error("list revisions failed", "error", err)
		return nil, fmt.Errorf("list revisions: %w", err)
	}

	out, err := c.exportAll(ctx, hc, metas, log)
	c.metrics.ObserveListing(err)
	if err != nil {
		var xerr *ExportError
		if errors.As(err, &xerr) {
			log.Error("export revisions failed", "error", err, "upstream_body", xerr.Body)
		} else {
			log.Error("export revisions failed", "error", err)
		}
		return nil, err
	}
	log.Info("listed revisions", "count", len(out))
	return out, nil
}

// authorized returns an HTTP client that adds the bearer token to every
// request and shares the base client's transport.
func (c *Client) authorized(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	hc.Timeout = c.httpClient.Timeout
	return hc
}

func (c *Client) listMeta(ctx context.Context, hc *http.Client, docID string) ([]*drive.Revision, error) {
	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}

	var metas []*drive.Revision
	err = svc.Revisions.List(docID).
		Fields("nextPageToken", "revisions(id,modifiedTime,exportLinks)").
		PageSize(200).
		Pages(ctx, func(page *drive.RevisionList) error {
			for _, rev := range page.Revisions {
				if rev == nil {
					continue
				}
				if rev.Id == "" {
					return errors.New("drive returned a revision without an id")
				}
				metas = append(metas, rev)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return metas, nil
}

// exportAll downloads plain-text exports with bounded concurrency. Result
// order matches metas.
func (c *Client) exportAll(ctx context.Context, hc *http.Client, metas []*drive.Revision, log *slog.Logger) ([]Revision, error) {
	out := make([]Revision, len(metas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for i, meta := range metas {
		out[i] = Revision{ID: meta.Id, ModifiedTime: meta.ModifiedTime, Content: Placeholder}
		link := meta.ExportLinks[plainTextMIME]
		if link == "" {
			c.metrics.ObserveExport("placeholder")
			continue
		}
		g.Go(func() error {
			start := time.Now()
			text, err := c.fetchExport(gctx, hc, meta.Id, link)
			c.latency.Since(start, err)
			c.metrics.ObserveDrive("export", time.Since(start).Seconds())
			if err != nil {
				c.metrics.ObserveExport("error")
				return err
			}
			c.metrics.ObserveExport("fetched")
			out[i].Content = text
			out[i].Exported = true
			log.Debug("revision exported", "revision_id", meta.Id, "modified_time", meta.ModifiedTime, "bytes", len(text))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchExport(ctx context.Context, hc *http.Client, revisionID, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("export revision %s: %w", revisionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &ExportError{RevisionID: revisionID, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxExportBytes+1))
	if err != nil {
		return "", fmt.Errorf("read export %s: %w", revisionID, err)
	}
	if int64(len(body)) > c.cfg.MaxExportBytes {
		return "", fmt.Errorf("export revision %s exceeds %d bytes", revisionID, c.cfg.MaxExportBytes)
	}
	return string(body), nil
}
