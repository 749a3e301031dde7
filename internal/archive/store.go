// Package archive persists experiment runs to SQLite: one row per run
// with its config and summary as JSON, plus every recorded series as a
// little-endian float64 blob. Replays read a run's config and seed
// back out and re-execute it.
package archive

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kdalton/phase-ensemble/internal/experiment"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	experiment   TEXT NOT NULL,
	seed         INTEGER NOT NULL,
	iterations   INTEGER NOT NULL,
	config_json  TEXT NOT NULL,
	summary_json TEXT NOT NULL,
	weights_json TEXT,
	finding      TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_series (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id  TEXT NOT NULL,
	name    TEXT NOT NULL,
	samples BLOB NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_run_series_run ON run_series(run_id);
`

// #endregion schema

// #region record

// RunRecord is one archived run.
type RunRecord struct {
	RunID      string
	Experiment string
	Seed       int64
	Iterations int
	Config     experiment.Config
	Summary    map[string]float64
	Weights    map[string][]float64
	Finding    string
	CreatedAt  time.Time
	Series     map[string][]float64
}

// #endregion record

// #region store

// Store manages archived runs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region save

// SaveRun archives a result with the config that produced it and
// returns the new run ID.
func (s *Store) SaveRun(cfg experiment.Config, res *experiment.Result) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	summaryJSON, err := json.Marshal(res.Summary)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	var weightsPtr interface{}
	if len(res.Weights) > 0 {
		weightsJSON, err := json.Marshal(res.Weights)
		if err != nil {
			return "", fmt.Errorf("marshal weights: %w", err)
		}
		weightsPtr = string(weightsJSON)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, experiment, seed, iterations, config_json, summary_json, weights_json, finding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, res.Experiment, res.Seed, res.Iterations, string(cfgJSON), string(summaryJSON),
		weightsPtr, res.Finding, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for name, samples := range res.Series {
		_, err = tx.Exec(
			`INSERT INTO run_series (run_id, name, samples) VALUES (?, ?, ?)`,
			id, name, encodeSeries(samples),
		)
		if err != nil {
			return "", fmt.Errorf("insert series %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// #endregion save

// #region get

// GetRun retrieves an archived run with all its series.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord
	var cfgJSON, summaryJSON, createdStr string
	var weightsJSON, finding sql.NullString

	err := s.db.QueryRow(
		`SELECT run_id, experiment, seed, iterations, config_json, summary_json, weights_json, finding, created_at
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&rec.RunID, &rec.Experiment, &rec.Seed, &rec.Iterations,
		&cfgJSON, &summaryJSON, &weightsJSON, &finding, &createdStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}

	if err := json.Unmarshal([]byte(cfgJSON), &rec.Config); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal summary: %w", err)
	}
	if weightsJSON.Valid {
		if err := json.Unmarshal([]byte(weightsJSON.String), &rec.Weights); err != nil {
			return RunRecord{}, fmt.Errorf("unmarshal weights: %w", err)
		}
	}
	if finding.Valid {
		rec.Finding = finding.String
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)

	rows, err := s.db.Query(`SELECT name, samples FROM run_series WHERE run_id = ?`, runID)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	rec.Series = make(map[string][]float64)
	for rows.Next() {
		var name string
		var blob []byte
		if err := rows.Scan(&name, &blob); err != nil {
			return RunRecord{}, fmt.Errorf("scan series: %w", err)
		}
		rec.Series[name] = decodeSeries(blob)
	}
	return rec, rows.Err()
}

// ListRuns returns the most recent runs without their series.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, experiment, seed, iterations, summary_json, finding, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var summaryJSON, createdStr string
		var finding sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Experiment, &rec.Seed, &rec.Iterations,
			&summaryJSON, &finding, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		if finding.Valid {
			rec.Finding = finding.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion get

// #region series-encoding

func encodeSeries(samples []float64) []byte {
	buf := make([]byte, len(samples)*8)
	for i, f := range samples {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeSeries(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out
}

// #endregion series-encoding
