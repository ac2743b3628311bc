// Package sqlite implements the persisted vector index. Each
// collection lives in its own directory under the base data directory,
// holding a single SQLite database with the chunk rows (text, metadata
// JSON, embedding BLOB) and the collection metadata. Similarity search
// scans the collection and ranks by cosine similarity.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// indexFile is the database file name inside each collection directory.
const indexFile = "index.db"

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id        TEXT PRIMARY KEY,
	content   TEXT NOT NULL,
	metadata  TEXT NOT NULL,
	embedding BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS collection_meta (
	id   INTEGER PRIMARY KEY CHECK (id = 1),
	data TEXT NOT NULL
);
`

// Index is a SQLite-backed vector index with one database per
// collection. The store path is derived deterministically from the
// collection name.
type Index struct {
	baseDir string

	mu  sync.Mutex
	dbs map[string]*sql.DB
}

// New creates an index rooted at baseDir, creating the directory if
// needed.
func New(baseDir string) (*Index, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("%w: vector store directory is empty", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating vector store directory: %w", err)
	}
	return &Index{
		baseDir: baseDir,
		dbs:     make(map[string]*sql.DB),
	}, nil
}

// collectionDir derives the storage directory for a collection name.
// The mapping is deterministic so the same name always resolves to the
// same directory.
func (x *Index) collectionDir(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return filepath.Join(x.baseDir, sb.String())
}

// CreateCollection allocates an empty store for name. Creating an
// existing collection is a no-op.
func (x *Index) CreateCollection(_ context.Context, name string) error {
	_, err := x.openDB(name, true)
	return err
}

// HasCollection reports whether a persisted store exists for name.
func (x *Index) HasCollection(name string) (bool, error) {
	_, err := os.Stat(filepath.Join(x.collectionDir(name), indexFile))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("checking collection %s: %w", name, err)
}

// ListCollections returns the names of all persisted collections in
// sorted order. Names come from the stored metadata, not the directory
// name, since directory names are sanitised.
func (x *Index) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(x.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading vector store directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(x.baseDir, entry.Name(), indexFile)); err != nil {
			continue
		}
		meta, err := x.loadMetaFromDir(entry.Name())
		if err != nil {
			// Unreadable metadata: fall back to the directory name.
			names = append(names, entry.Name())
			continue
		}
		names = append(names, meta.Name)
	}

	sort.Strings(names)
	return names, nil
}

// DeleteCollection removes the collection's directory. Deleting a
// missing collection is a no-op; a name that only collides with
// another collection's directory must not delete that store.
func (x *Index) DeleteCollection(_ context.Context, name string) error {
	dir := x.collectionDir(name)
	if _, err := os.Stat(filepath.Join(dir, indexFile)); err == nil {
		meta, err := x.loadMetaFromDir(filepath.Base(dir))
		if err == nil && meta.Name != "" && meta.Name != name {
			return fmt.Errorf("%w: collection name %q maps to the same store as existing collection %q",
				domain.ErrInvalidInput, name, meta.Name)
		}
	}

	x.mu.Lock()
	if db, ok := x.dbs[name]; ok {
		db.Close()
		delete(x.dbs, name)
	}
	x.mu.Unlock()

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("deleting collection %s: %w", name, err)
	}
	return nil
}

// Upsert writes entries into the named collection in one transaction.
func (x *Index) Upsert(ctx context.Context, collection string, entries []driven.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	db, err := x.openDB(collection, false)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, content, metadata, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		metaJSON, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("encoding chunk metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, entry.ID, entry.Content, string(metaJSON),
			float32SliceToBytes(entry.Embedding)); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Search scans the collection, scores every chunk by cosine similarity
// against the query vector, and returns up to k hits at or above
// threshold, best first.
func (x *Index) Search(ctx context.Context, collection string, query []float32, k int, threshold float64) ([]driven.IndexHit, error) {
	exists, err := x.HasCollection(collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}

	db, err := x.openDB(collection, false)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT content, metadata, embedding FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("scanning collection %s: %w", collection, err)
	}
	defer rows.Close()

	var hits []driven.IndexHit
	for rows.Next() {
		var content, metaJSON string
		var blob []byte
		if err := rows.Scan(&content, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("reading chunk row: %w", err)
		}

		score := relevanceScore(query, bytesToFloat32Slice(blob))
		if score < threshold {
			continue
		}

		var meta domain.Metadata
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("decoding chunk metadata: %w", err)
		}

		hits = append(hits, driven.IndexHit{
			Content:  content,
			Metadata: meta,
			Score:    score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning collection %s: %w", collection, err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// SaveMetadata persists the collection metadata alongside the chunks.
func (x *Index) SaveMetadata(ctx context.Context, meta domain.CollectionMetadata) error {
	db, err := x.openDB(meta.Name, true)
	if err != nil {
		return err
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding collection metadata: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO collection_meta (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`, string(data))
	if err != nil {
		return fmt.Errorf("saving collection metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads the persisted metadata for a collection.
func (x *Index) LoadMetadata(ctx context.Context, collection string) (domain.CollectionMetadata, error) {
	exists, err := x.HasCollection(collection)
	if err != nil {
		return domain.CollectionMetadata{}, err
	}
	if !exists {
		return domain.CollectionMetadata{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}

	db, err := x.openDB(collection, false)
	if err != nil {
		return domain.CollectionMetadata{}, err
	}

	var data string
	row := db.QueryRowContext(ctx, "SELECT data FROM collection_meta WHERE id = 1")
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CollectionMetadata{Name: collection}, nil
		}
		return domain.CollectionMetadata{}, fmt.Errorf("loading collection metadata: %w", err)
	}

	var meta domain.CollectionMetadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return domain.CollectionMetadata{}, fmt.Errorf("decoding collection metadata: %w", err)
	}
	return meta, nil
}

// Close closes all open collection databases.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	var firstErr error
	for name, db := range x.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(x.dbs, name)
	}
	return firstErr
}

// openDB returns the cached database handle for a collection, opening
// (and optionally creating) it on first use.
func (x *Index) openDB(name string, create bool) (*sql.DB, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if db, ok := x.dbs[name]; ok {
		return db, nil
	}

	dir := x.collectionDir(name)
	path := filepath.Join(dir, indexFile)

	if !create {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
			}
			return nil, fmt.Errorf("checking collection %s: %w", name, err)
		}
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating collection directory: %w", err)
	}

	// WAL keeps concurrent readers usable while a batch commits.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", name, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising collection %s: %w", name, err)
	}
	if err := checkOwner(db, name); err != nil {
		db.Close()
		return nil, err
	}

	x.dbs[name] = db
	return db, nil
}

// checkOwner guards against sanitised-directory collisions: distinct
// names like "a b" and "a-b" map to the same directory, so a store
// already claimed by another collection name must not be reused.
func checkOwner(db *sql.DB, name string) error {
	var data string
	err := db.QueryRow("SELECT data FROM collection_meta WHERE id = 1").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking collection owner: %w", err)
	}

	var meta domain.CollectionMetadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return fmt.Errorf("decoding collection metadata: %w", err)
	}
	if meta.Name != "" && meta.Name != name {
		return fmt.Errorf("%w: collection name %q maps to the same store as existing collection %q",
			domain.ErrInvalidInput, name, meta.Name)
	}
	return nil
}

// loadMetaFromDir reads metadata directly from a directory entry,
// bypassing the name-keyed cache (used by ListCollections, which only
// knows sanitised directory names).
func (x *Index) loadMetaFromDir(dir string) (domain.CollectionMetadata, error) {
	db, err := sql.Open("sqlite", filepath.Join(x.baseDir, dir, indexFile))
	if err != nil {
		return domain.CollectionMetadata{}, err
	}
	defer db.Close()

	var data string
	if err := db.QueryRow("SELECT data FROM collection_meta WHERE id = 1").Scan(&data); err != nil {
		return domain.CollectionMetadata{}, err
	}

	var meta domain.CollectionMetadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return domain.CollectionMetadata{}, err
	}
	return meta, nil
}

// relevanceScore is cosine similarity clamped to [0,1]: monotonic in
// similarity and comparable across collections built with the same
// embedding model.
func relevanceScore(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// float32SliceToBytes encodes a vector as little-endian float32 bytes.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
