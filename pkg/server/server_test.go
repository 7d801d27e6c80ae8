package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/helmcode/devcompanion/pkg/analyzer"
	"github.com/helmcode/devcompanion/pkg/model"
	"github.com/helmcode/devcompanion/pkg/snapshot"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// The genai client's auth transport pulls in opencensus, whose stats
	// worker starts in init and never exits.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// memStore is a Store backed by a slice, newest last.
type memStore struct {
	snaps     []*model.Snapshot
	err       error
	lastLimit int
}

func (m *memStore) Save(_ context.Context, p *snapshot.Payload) (*model.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := snapshot.Validate(p); err != nil {
		return nil, err
	}
	version := 1
	for _, s := range m.snaps {
		if s.Filename == p.Filename && s.Path == p.Path && s.Version >= version {
			version = s.Version + 1
		}
	}
	snap := &model.Snapshot{
		ID:            "id-" + strings.Repeat("x", len(m.snaps)+1),
		Filename:      p.Filename,
		Path:          p.Path,
		Content:       *p.Content,
		Language:      p.Language,
		Version:       version,
		CommitMessage: p.CommitMessage,
		Tags:          p.Tags,
	}
	m.snaps = append(m.snaps, snap)
	return snap, nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.snaps {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, snapshot.ErrNotFound
}

func (m *memStore) Latest(_ context.Context) (*model.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.snaps) == 0 {
		return nil, snapshot.ErrNotFound
	}
	return m.snaps[len(m.snaps)-1], nil
}

func (m *memStore) ListByFile(_ context.Context, file string) ([]*model.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*model.Snapshot{}
	for i := len(m.snaps) - 1; i >= 0; i-- {
		if s := m.snaps[i]; s.Path == file || s.Filename == file {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Recent(_ context.Context, limit int) ([]*model.Snapshot, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	out := []*model.Snapshot{}
	for i := len(m.snaps) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.snaps[i])
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func newTestServer(store snapshot.Store) http.Handler {
	return New(analyzer.New(), store, Options{Env: "test", RequestTimeout: time.Second}).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok", "env": "test"}, decode(t, rec))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodOptions, "/api/analyze", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestAnalyze(t *testing.T) {
	h := newTestServer(nil)
	rec := do(t, h, http.MethodPost, "/api/analyze", `{"code":"const a = 10; const b = 5; console.log(a + b);","language":"JavaScript"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analyzer.SourceHeuristic, rec.Header().Get(sourceHeader))

	body := decode(t, rec)
	assert.Len(t, body, 5)
	for _, field := range []string{"explanation", "issues", "suggestions", "conceptTags", "testCases"} {
		assert.Contains(t, body, field)
	}
	assert.Equal(t, "JavaScript", body["conceptTags"].([]any)[0])
}

func TestAnalyze_DefaultsLanguage(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/analyze", `{"code":"let x = 1;"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "JavaScript", decode(t, rec)["conceptTags"].([]any)[0])
}

func TestAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing code", `{"language":"Go"}`, "Code is required"},
		{"blank code", `{"code":"   "}`, "Code is required"},
		{"empty body", ``, "Code is required"},
		{"malformed", `{"code":`, "Invalid JSON body"},
		{"wrong type", `{"code": 42}`, "Invalid JSON body"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, newTestServer(nil), http.MethodPost, "/api/analyze", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, map[string]any{"error": tc.want}, decode(t, rec))
		})
	}
}

func TestSnapshotRoutesNeedStore(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/api/snapshots", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveSnapshot(t *testing.T) {
	store := &memStore{}
	h := newTestServer(store)

	rec := do(t, h, http.MethodPost, "/api/snapshots", `{"filename":"a.js","path":"src","content":"","language":"JavaScript","tags":["x"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	snap := body["snapshot"].(map[string]any)
	assert.Equal(t, "a.js", snap["filename"])
	assert.Equal(t, 1.0, snap["version"])

	rec = do(t, h, http.MethodPost, "/api/snapshots", `{"filename":"a.js","path":"src","content":"x","language":"JavaScript"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2.0, decode(t, rec)["snapshot"].(map[string]any)["version"])
}

func TestSaveSnapshot_Validation(t *testing.T) {
	h := newTestServer(&memStore{})

	rec := do(t, h, http.MethodPost, "/api/snapshots", `{"filename":"a.js"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{
		"ok":     false,
		"errors": []any{"path_required_string", "language_required_string", "content_required"},
	}, decode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/snapshots", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"payload_required"}, decode(t, rec)["errors"])
}

func TestGetSnapshot(t *testing.T) {
	store := &memStore{}
	h := newTestServer(store)

	rec := do(t, h, http.MethodPost, "/api/snapshots", `{"filename":"a.js","path":"src","content":"1","language":"JavaScript"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["snapshot"].(map[string]any)["id"].(string)

	rec = do(t, h, http.MethodGet, "/api/snapshots/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode(t, rec)["snapshot"].(map[string]any)["id"])

	rec = do(t, h, http.MethodGet, "/api/snapshots/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]any{"ok": false, "error": "not_found"}, decode(t, rec))
}

func TestListSnapshots(t *testing.T) {
	store := &memStore{}
	h := newTestServer(store)

	rec := do(t, h, http.MethodGet, "/api/snapshots?latest=true", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]any{"ok": false, "error": "no_snapshots"}, decode(t, rec))

	for _, body := range []string{
		`{"filename":"a.js","path":"src","content":"1","language":"JavaScript"}`,
		`{"filename":"b.js","path":"src","content":"2","language":"JavaScript"}`,
		`{"filename":"a.js","path":"src","content":"3","language":"JavaScript"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/snapshots", body).Code)
	}

	rec = do(t, h, http.MethodGet, "/api/snapshots?latest=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", decode(t, rec)["snapshot"].(map[string]any)["content"])

	rec = do(t, h, http.MethodGet, "/api/snapshots?file=a.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["snapshots"], 2)

	rec = do(t, h, http.MethodGet, "/api/snapshots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["snapshots"], 3)
	assert.Equal(t, snapshot.MaxRecent, store.lastLimit)

	rec = do(t, h, http.MethodGet, "/api/snapshots?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["snapshots"], 1)
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, snapshot.MaxRecent, parseLimit(""))
	assert.Equal(t, snapshot.MaxRecent, parseLimit("abc"))
	assert.Equal(t, 1, parseLimit("0"))
	assert.Equal(t, 1, parseLimit("-4"))
	assert.Equal(t, 10, parseLimit("10"))
	assert.Equal(t, snapshot.MaxRecent, parseLimit("1000"))
}

func TestStoreFailuresAreInternalErrors(t *testing.T) {
	h := newTestServer(&memStore{err: errors.New("disk full")})

	for _, target := range []string{"/api/snapshots", "/api/snapshots?latest=true", "/api/snapshots?file=a.js", "/api/snapshots/abc"} {
		rec := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Equal(t, map[string]any{"ok": false, "error": "internal_error"}, decode(t, rec), target)
	}

	rec := do(t, h, http.MethodPost, "/api/snapshots", `{"filename":"a.js","path":"src","content":"1","language":"JavaScript"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
