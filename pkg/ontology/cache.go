package ontology

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite"
)

// LoadCached parses triplePath, but skips re-parsing when a SQLite cache at
// cachePath already holds a hydrated ontology for the same source checksum
// (mirrors the teacher's store/sqlite OpenSQLite/initSchema round-trip
// pattern, applied here to the taxonomy instead of news documents).
func LoadCached(ctx context.Context, triplePath, cachePath string) (*Ontology, error) {
	data, err := os.ReadFile(triplePath)
	if err != nil {
		return nil, fmt.Errorf("read ontology source: %w", err)
	}
	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	if cachePath != "" {
		if o, ok, err := tryHydrate(ctx, cachePath, checksum); err == nil && ok {
			return o, nil
		}
	}

	o, err := LoadFrom(newByteReader(data))
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := persist(ctx, cachePath, checksum, o); err != nil {
			return o, fmt.Errorf("persist ontology cache: %w", err)
		}
	}
	return o, nil
}

func newByteReader(b []byte) *bytesReader { return &bytesReader{data: b} }

// bytesReader is a tiny io.Reader over an in-memory byte slice, avoiding a
// second filesystem read of the (already loaded) triple source.
type bytesReader struct {
	data []byte
	pos  int
}

func (r *bytesReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot (
	checksum TEXT PRIMARY KEY,
	payload  BLOB NOT NULL
);
`

// serialized is the opaque round-trip payload for the derived ontology
// structures (spec.md §6: "a serialized form of the derived structures and
// a serialized graph may be cached to disk... format opaque; must round-trip").
type serialized struct {
	Topics       []string            `json:"topics"`
	PrimaryLabel map[string]string   `json:"primary_label"`
	Broaders     map[string][]string `json:"broaders"`
	Narrowers    map[string][]string `json:"narrowers"`
	SameAs       map[string][]string `json:"same_as"`
	Stems        map[string][]string `json:"stems"`
	AllBroaders  map[string][]string `json:"all_broaders"`
}

func persist(ctx context.Context, cachePath, checksum string, o *Ontology) error {
	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, cacheSchema); err != nil {
		return err
	}

	s := toSerialized(o)
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO snapshot(checksum, payload) VALUES(?, ?)
		 ON CONFLICT(checksum) DO UPDATE SET payload=excluded.payload`,
		checksum, payload)
	return err
}

func tryHydrate(ctx context.Context, cachePath, checksum string) (*Ontology, bool, error) {
	if _, err := os.Stat(cachePath); err != nil {
		return nil, false, nil
	}
	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return nil, false, err
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, cacheSchema); err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM snapshot WHERE checksum = ?`, checksum).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var s serialized
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, false, err
	}
	return fromSerialized(s), true, nil
}

func toSerialized(o *Ontology) serialized {
	topics := make([]string, 0, len(o.topics))
	for t := range o.topics {
		topics = append(topics, t)
	}
	return serialized{
		Topics:       topics,
		PrimaryLabel: o.primaryLabel,
		Broaders:     o.broaders,
		Narrowers:    o.narrowers,
		SameAs:       o.sameAs,
		Stems:        o.stems,
		AllBroaders:  o.allBroaders,
	}
}

func fromSerialized(s serialized) *Ontology {
	o := New()
	for _, t := range s.Topics {
		o.topics[t] = struct{}{}
	}
	o.primaryLabel = s.PrimaryLabel
	o.broaders = s.Broaders
	o.narrowers = s.Narrowers
	o.sameAs = s.SameAs
	o.stems = s.Stems
	o.allBroaders = s.AllBroaders
	o.buildGraphAndAncestors() // graph + all_broaders are cheap to rebuild and keep the cache schema simple
	return o
}
