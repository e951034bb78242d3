package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	// Enable WAL mode (Write-Ahead Logging)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// The facts table is append-only. The implicit rowid gives replay its
	// total order; the envelope fields are columns, the payload a JSON blob.
	query := `
	CREATE TABLE IF NOT EXISTS facts (
		fact_id TEXT PRIMARY KEY,
		fact_type TEXT NOT NULL,
		ts_ingest DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		writer_id TEXT,
		payload JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_facts_type ON facts(fact_type);

	CREATE TABLE IF NOT EXISTS leases (
		name TEXT PRIMARY KEY,
		holder_id TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		version INTEGER NOT NULL
	);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create journal tables: %w", err)
	}

	return nil
}

// AppendFact appends a fact to the journal. The fact's ingest timestamp is
// filled in if the caller left it zero.
func (s *Store) AppendFact(ctx context.Context, fact *Fact) error {
	if fact.TsIngest.IsZero() {
		fact.TsIngest = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO facts (fact_id, fact_type, ts_ingest, writer_id, payload)
		VALUES (?, ?, ?, ?, ?)
	`, string(fact.FactID), string(fact.FactType), fact.TsIngest, fact.WriterID, []byte(fact.Payload))

	if err != nil {
		return fmt.Errorf("failed to append fact: %w", err)
	}

	return nil
}

// Facts returns every fact in the journal in insertion order.
func (s *Store) Facts(ctx context.Context) ([]*Fact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, fact_id, fact_type, ts_ingest, writer_id, payload
		FROM facts ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var facts []*Fact
	for rows.Next() {
		var f Fact
		var payload []byte
		if err := rows.Scan(&f.Seq, &f.FactID, &f.FactType, &f.TsIngest, &f.WriterID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		f.Payload = payload
		facts = append(facts, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate facts: %w", err)
	}

	return facts, nil
}

// CountFacts returns the number of facts of the given type, or of all facts
// when factType is empty.
func (s *Store) CountFacts(ctx context.Context, factType FactType) (int64, error) {
	var n int64
	var err error
	if factType == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts WHERE fact_type = ?`, string(factType)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count facts: %w", err)
	}
	return n, nil
}
