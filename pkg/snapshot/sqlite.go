package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/helmcode/devcompanion/pkg/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	path TEXT NOT NULL,
	content TEXT NOT NULL,
	language TEXT NOT NULL,
	version INTEGER NOT NULL,
	commit_message TEXT NOT NULL,
	analysis_json TEXT NOT NULL,
	tags_json TEXT NOT NULL,
	user_id TEXT,
	content_hash TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE (path, filename, version)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_filename ON snapshots(filename);
`

const selectColumns = `SELECT id, filename, path, content, language, version, commit_message,
	analysis_json, tags_json, user_id, content_hash, created_at FROM snapshots`

// SQLiteStore keeps snapshots in a single SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
	now    func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite creates or opens the database at dbPath and applies the schema.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != MemoryPath {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
		dsn = dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, dbPath: dbPath, now: time.Now}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save stores p as the next version of filename+path. The version lookup and
// insert share one transaction.
func (s *SQLiteStore) Save(ctx context.Context, p *Payload) (*model.Snapshot, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		prevVersion int
		prevHash    string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT version, content_hash FROM snapshots WHERE filename = ? AND path = ? ORDER BY version DESC LIMIT 1`,
		p.Filename, p.Path,
	).Scan(&prevVersion, &prevHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find latest version: %w", err)
	}

	snap := newSnapshot(p, prevVersion+1, s.now())
	snap.Unchanged = prevVersion > 0 && prevHash == snap.ContentHash

	analysisJSON, err := json.Marshal(snap.Analysis)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	tagsJSON, err := json.Marshal(snap.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, filename, path, content, language, version, commit_message,
			analysis_json, tags_json, user_id, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Filename, snap.Path, snap.Content, snap.Language, snap.Version, snap.CommitMessage,
		string(analysisJSON), string(tagsJSON), snap.UserID, snap.ContentHash, snap.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Snapshot, error) {
	return s.queryOne(ctx, selectColumns+` WHERE id = ?`, id)
}

func (s *SQLiteStore) Latest(ctx context.Context) (*model.Snapshot, error) {
	return s.queryOne(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT 1`)
}

func (s *SQLiteStore) ListByFile(ctx context.Context, file string) ([]*model.Snapshot, error) {
	return s.queryAll(ctx,
		selectColumns+` WHERE path = ? OR filename = ? ORDER BY version DESC, created_at DESC`,
		file, file)
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*model.Snapshot, error) {
	return s.queryAll(ctx,
		selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		ClampLimit(limit))
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, args ...any) (*model.Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) queryAll(ctx context.Context, query string, args ...any) ([]*model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []*model.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*model.Snapshot, error) {
	var (
		snap         model.Snapshot
		analysisJSON string
		tagsJSON     string
		userID       sql.NullString
		createdAt    int64
	)
	err := row.Scan(&snap.ID, &snap.Filename, &snap.Path, &snap.Content, &snap.Language, &snap.Version,
		&snap.CommitMessage, &analysisJSON, &tagsJSON, &userID, &snap.ContentHash, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(analysisJSON), &snap.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &snap.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if userID.Valid {
		snap.UserID = &userID.String
	}
	snap.CreatedAt = time.Unix(0, createdAt).UTC()
	return &snap, nil
}

func newSnapshot(p *Payload, version int, now time.Time) *model.Snapshot {
	content := *p.Content

	message := strings.TrimSpace(p.CommitMessage)
	if message == "" {
		message = fmt.Sprintf("Auto-save v%d", version)
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return &model.Snapshot{
		ID:            uuid.NewString(),
		Filename:      p.Filename,
		Path:          p.Path,
		Content:       content,
		Language:      p.Language,
		Version:       version,
		CommitMessage: message,
		Analysis:      normalizeAnalysis(p.Analysis),
		Tags:          tags,
		UserID:        p.UserID,
		ContentHash:   Fingerprint(content),
		CreatedAt:     now.UTC(),
	}
}

// Fingerprint is the xxhash64 of content as 16 hex digits.
func Fingerprint(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

func normalizeAnalysis(a *model.AnalysisResult) *model.AnalysisResult {
	out := model.AnalysisResult{}
	if a != nil {
		out = *a
	}
	if out.Issues == nil {
		out.Issues = []string{}
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	if out.ConceptTags == nil {
		out.ConceptTags = []string{}
	}
	if out.TestCases == nil {
		out.TestCases = []model.TestCase{}
	}
	return &out
}
