// Package audit implements the append-only advisory audit matrix: every
// computed advisory is recorded with its inputs and derivation metadata,
// retained up to a fixed capacity with strict FIFO eviction.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/consensus"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS advisory_log (
	seq              INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id         TEXT NOT NULL,
	decision_context TEXT NOT NULL,
	consensus_level  REAL NOT NULL,
	recommendation   TEXT NOT NULL,
	advisory_json    TEXT NOT NULL,
	verdict_sources  TEXT NOT NULL,
	derivation_json  TEXT,
	created_at       TEXT NOT NULL
);
`

// #endregion schema

// DefaultCapacity bounds retention when no explicit capacity is configured.
const DefaultCapacity = 500

// #region matrix-struct

// Matrix is the SQLite-backed advisory log. All mutation goes through one
// mutex; reads return fresh copies so callers can never corrupt retained
// entries.
type Matrix struct {
	mu       sync.Mutex
	db       *sql.DB
	capacity int
}

// #endregion matrix-struct

// #region constructor

// NewMatrix opens (or creates) the advisory log database and runs migrations.
// Pass ":memory:" for an ephemeral matrix.
func NewMatrix(dbPath string, capacity int) (*Matrix, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Matrix{db: db, capacity: capacity}, nil
}

// Close closes the underlying database connection.
func (m *Matrix) Close() error {
	return m.db.Close()
}

// Capacity returns the retention bound.
func (m *Matrix) Capacity() int {
	return m.capacity
}

// #endregion constructor

// #region record

// Record appends one audit entry. A full matrix evicts its oldest entries
// rather than rejecting the write; the returned Entry reflects what was
// stored.
func (m *Matrix) Record(decisionContext string, advisory consensus.AdvisorySignal, sources []string, derivation map[string]any) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := Entry{
		EntryID:         uuid.New().String(),
		DecisionContext: decisionContext,
		Advisory:        advisory,
		VerdictSources:  append([]string(nil), sources...),
		Derivation:      derivation,
		CreatedAt:       time.Now().UTC(),
	}

	advisoryJSON, err := json.Marshal(advisory)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal advisory: %w", err)
	}
	sourcesJSON, err := json.Marshal(entry.VerdictSources)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal sources: %w", err)
	}
	var derivationPtr any
	if len(derivation) > 0 {
		derivationJSON, err := json.Marshal(derivation)
		if err != nil {
			return Entry{}, fmt.Errorf("marshal derivation: %w", err)
		}
		derivationPtr = string(derivationJSON)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return Entry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO advisory_log (entry_id, decision_context, consensus_level, recommendation, advisory_json, verdict_sources, derivation_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, decisionContext, advisory.ConsensusLevel, string(advisory.Recommendation),
		string(advisoryJSON), string(sourcesJSON), derivationPtr,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert advisory: %w", err)
	}

	// Strict FIFO retention: keep only the most recent rows by insertion order.
	_, err = tx.Exec(
		`DELETE FROM advisory_log WHERE seq NOT IN (
			SELECT seq FROM advisory_log ORDER BY seq DESC LIMIT ?
		)`, m.capacity,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("evict: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit: %w", err)
	}
	return entry, nil
}

// #endregion record

// #region summarize

// Summarize aggregates the retained entries: total count plus counts by
// consensus bucket and by recommendation.
func (m *Matrix) Summarize() (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.db.Query(`SELECT consensus_level, recommendation FROM advisory_log`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	defer rows.Close()

	summary := Summary{
		ByConsensusBucket: map[string]int{},
		ByRecommendation:  map[string]int{},
	}
	for rows.Next() {
		var level float64
		var recommendation string
		if err := rows.Scan(&level, &recommendation); err != nil {
			return Summary{}, fmt.Errorf("scan row: %w", err)
		}
		summary.TotalRecorded++
		summary.ByConsensusBucket[consensusBucket(level)]++
		summary.ByRecommendation[recommendation]++
	}
	return summary, rows.Err()
}

// #endregion summarize

// #region recent

// Recent returns up to limit retained entries, newest first. Each Entry is
// rebuilt from its stored row; mutating the result cannot touch the log.
func (m *Matrix) Recent(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.db.Query(
		`SELECT entry_id, decision_context, advisory_json, verdict_sources, derivation_json, created_at
		 FROM advisory_log ORDER BY seq DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var advisoryJSON, sourcesJSON, createdStr string
		var derivationJSON sql.NullString
		if err := rows.Scan(&e.EntryID, &e.DecisionContext, &advisoryJSON, &sourcesJSON, &derivationJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(advisoryJSON), &e.Advisory); err != nil {
			return nil, fmt.Errorf("unmarshal advisory: %w", err)
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &e.VerdictSources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
		if derivationJSON.Valid {
			if err := json.Unmarshal([]byte(derivationJSON.String), &e.Derivation); err != nil {
				return nil, fmt.Errorf("unmarshal derivation: %w", err)
			}
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion recent
