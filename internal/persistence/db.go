// Package persistence provides SQLite-based bulk storage for generated
// simulation runs.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/polisim/internal/dataset"
	"github.com/talgya/polisim/internal/engine"
)

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		population_size INTEGER NOT NULL,
		policy_type TEXT NOT NULL,
		policy_params_json TEXT NOT NULL,
		price_spike INTEGER NOT NULL,
		supply_shortage INTEGER NOT NULL,
		compliance_collapse INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		avg_price REAL NOT NULL,
		total_demand REAL NOT NULL,
		gini REAL NOT NULL,
		compliance_rate REAL NOT NULL,
		avg_stress REAL NOT NULL,
		PRIMARY KEY (run_id, step)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_policy ON runs(policy_type);
	CREATE INDEX IF NOT EXISTS idx_history_run ON history(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes one run and its full history in a single transaction.
func (db *DB) SaveRun(run dataset.RunRecord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	policyType := "none"
	paramsJSON := "{}"
	if run.Policy != nil {
		policyType = run.Policy.Type
		raw, err := json.Marshal(run.Policy.Params)
		if err != nil {
			return fmt.Errorf("marshal policy params: %w", err)
		}
		paramsJSON = string(raw)
	}

	_, err = tx.Exec(`INSERT INTO runs
		(id, seed, population_size, policy_type, policy_params_json,
		 price_spike, supply_shortage, compliance_collapse)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Seed, run.PopulationSize, policyType, paramsJSON,
		boolInt(run.Labels.PriceSpike),
		boolInt(run.Labels.SupplyShortage),
		boolInt(run.Labels.ComplianceCollapse),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO history
		(run_id, step, avg_price, total_demand, gini, compliance_rate, avg_stress)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range run.History {
		_, err := stmt.Exec(run.ID, h.Step, h.AvgPrice, h.TotalDemand,
			h.Gini, h.ComplianceRate, h.AvgStress)
		if err != nil {
			return fmt.Errorf("insert history step %d: %w", h.Step, err)
		}
	}

	return tx.Commit()
}

// SaveBatch stores a full generated batch.
func (db *DB) SaveBatch(runs []dataset.RunRecord) error {
	slog.Info("saving runs", "count", len(runs))
	for _, run := range runs {
		if err := db.SaveRun(run); err != nil {
			return err
		}
	}
	return nil
}

// CountRuns returns the number of stored runs.
func (db *DB) CountRuns() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM runs")
	return n, err
}

// RunHistory loads the ordered history for one run id.
func (db *DB) RunHistory(runID string) ([]engine.HistoryRecord, error) {
	var out []engine.HistoryRecord
	err := db.conn.Select(&out, `SELECT
		step, avg_price AS avgprice, total_demand AS totaldemand,
		gini, compliance_rate AS compliancerate, avg_stress AS avgstress
		FROM history WHERE run_id = ? ORDER BY step`, runID)
	return out, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
