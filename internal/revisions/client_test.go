package revisions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/ideagraph/internal/metrics"
	"github.com/dgallion1/ideagraph/internal/stats"
)

// fakeDrive serves the revisions.list endpoint in two pages plus the
// export links it hands out.
type fakeDrive struct {
	srv         *httptest.Server
	listCalls   atomic.Int32
	exportCalls atomic.Int32
	exportCode  atomic.Int32
	sawAuth     atomic.Value
}

func newFakeDrive(t *testing.T) *fakeDrive {
	t.Helper()
	fd := &fakeDrive{}
	mux := http.NewServeMux()
	mux.HandleFunc("/files/doc_123-x/revisions", func(w http.ResponseWriter, r *http.Request) {
		fd.listCalls.Add(1)
		fd.sawAuth.Store(r.Header.Get("Authorization"))
		base := "http://" + r.Host
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"nextPageToken": "page-2",
				"revisions": []map[string]any{
					{"id": "1", "modifiedTime": "2024-05-01T10:00:00.000Z", "exportLinks": map[string]string{
						"text/plain": base + "/export/1",
						"text/html":  base + "/export/1.html",
					}},
					{"id": "2", "modifiedTime": "2024-05-02T10:00:00.000Z"},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"revisions": []map[string]any{
				{"id": "3", "modifiedTime": "2024-05-03T10:00:00.000Z", "exportLinks": map[string]string{
					"text/plain": base + "/export/3",
				}},
			},
		})
	})
	mux.HandleFunc("/export/", func(w http.ResponseWriter, r *http.Request) {
		fd.exportCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if code := int(fd.exportCode.Load()); code != 0 {
			w.WriteHeader(code)
			_, _ = w.Write([]byte("export failed"))
			return
		}
		_, _ = w.Write([]byte("text of " + r.URL.Path[len("/export/"):]))
	})
	mux.HandleFunc("/files/missing/revisions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found: missing."}}`))
	})
	fd.srv = httptest.NewServer(mux)
	t.Cleanup(fd.srv.Close)
	return fd
}

func newTestClient(fd *fakeDrive, m *metrics.Metrics) *Client {
	return NewClient(Config{Endpoint: fd.srv.URL + "/", Concurrency: 2}, stats.NewLatency(time.Hour), m, nil)
}

func TestExtractDocID(t *testing.T) {
	cases := map[string]string{
		"1AbC_d-9":   "1AbC_d-9",
		" 1AbC_d-9 ": "1AbC_d-9",
		"https://docs.google.com/document/d/1AbC_d-9/edit#heading=h.x": "1AbC_d-9",
		"https://drive.google.com/file/d/XYZ/view":                     "XYZ",
		"https://docs.google.com/document/d//edit":                     "",
		"":               "",
		"../etc/passwd":  "",
		"id with spaces": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractDocID(in), "input %q", in)
	}
}

func TestList_FetchesAllPagesAndExports(t *testing.T) {
	fd := newFakeDrive(t)
	m := metrics.New()
	c := newTestClient(fd, m)

	revs, err := c.List(context.Background(), "tok", "https://docs.google.com/document/d/doc_123-x/edit")
	require.NoError(t, err)

	require.Len(t, revs, 3)
	assert.Equal(t, Revision{ID: "1", ModifiedTime: "2024-05-01T10:00:00.000Z", Content: "text of 1", Exported: true}, revs[0])
	assert.Equal(t, Revision{ID: "2", ModifiedTime: "2024-05-02T10:00:00.000Z", Content: Placeholder}, revs[1])
	assert.Equal(t, "text of 3", revs[2].Content)

	assert.Equal(t, int32(2), fd.listCalls.Load())
	assert.Equal(t, int32(2), fd.exportCalls.Load())
	assert.Equal(t, "Bearer tok", fd.sawAuth.Load())

	// One list plus two export samples.
	assert.Equal(t, 3, c.Latency().Snapshot().Count)
}

func TestList_ValidatesInputs(t *testing.T) {
	fd := newFakeDrive(t)
	c := newTestClient(fd, nil)

	_, err := c.List(context.Background(), "", "doc_123-x")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = c.List(context.Background(), "tok", "  ")
	assert.ErrorIs(t, err, ErrMissingDocID)

	assert.Zero(t, fd.listCalls.Load())
}

func TestList_UpstreamNotFound(t *testing.T) {
	fd := newFakeDrive(t)
	c := newTestClient(fd, nil)

	_, err := c.List(context.Background(), "tok", "missing")
	require.Error(t, err)

	code, ok := UpstreamStatus(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 1, c.Latency().Snapshot().Errors)
}

func TestList_ExportFailureFailsCall(t *testing.T) {
	fd := newFakeDrive(t)
	fd.exportCode.Store(http.StatusForbidden)
	c := newTestClient(fd, nil)

	_, err := c.List(context.Background(), "tok", "doc_123-x")
	require.Error(t, err)

	var xerr *ExportError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, http.StatusForbidden, xerr.StatusCode)
	assert.Equal(t, "export failed", xerr.Body)
	assert.NotContains(t, err.Error(), "export failed")
}

func TestList_ExportSizeCap(t *testing.T) {
	fd := newFakeDrive(t)
	c := NewClient(Config{Endpoint: fd.srv.URL + "/", MaxExportBytes: 4}, nil, nil, nil)

	_, err := c.List(context.Background(), "tok", "doc_123-x")
	assert.ErrorContains(t, err, "exceeds 4 bytes")
}

func TestUpstreamStatus_PlainError(t *testing.T) {
	_, ok := UpstreamStatus(ErrMissingToken)
	assert.False(t, ok)
}
