package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteSink appends records to a "records" table.
type SQLiteSink struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLiteSink opens (or creates) the database at path and makes sure the
// table exists.
func OpenSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			time REAL NOT NULL,
			module TEXT NOT NULL,
			organism INTEGER NOT NULL,
			kind TEXT NOT NULL,
			phase TEXT NOT NULL,
			generation INTEGER NOT NULL,
			evaluation INTEGER NOT NULL,
			fitness REAL NOT NULL,
			detail TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Write(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (time, module, organism, kind, phase, generation, evaluation, fitness, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Time, r.Module, r.Organism, string(r.Kind), r.Phase, r.Generation, r.Evaluation, r.Fitness, r.Detail)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Query returns the records of one kind in write order. An empty kind
// returns everything.
func (s *SQLiteSink) Query(ctx context.Context, kind Kind) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT time, module, organism, kind, phase, generation, evaluation, fitness, detail
		FROM records
		WHERE ? = '' OR kind = ?
		ORDER BY seq
	`, string(kind), string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var k string
		if err := rows.Scan(&r.Time, &r.Module, &r.Organism, &k, &r.Phase, &r.Generation, &r.Evaluation, &r.Fitness, &r.Detail); err != nil {
			return nil, err
		}
		r.Kind = Kind(k)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
