package metadatastore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

// SQLiteStore provides SQLite-based persistence for runs, registered models,
// model versions and aliases
type SQLiteStore struct {
	db *sql.DB

	// versionMu serializes version number allocation within this process;
	// the transaction in CreateModelVersion protects against other writers.
	versionMu sync.Mutex
}

// NewSQLiteStore creates a new SQLite-based storage instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Open database with connection pooling parameters
	// Format: file:path?param=value
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SetMaxOpenConns: Maximum number of open connections to the database
	// For SQLite, we want this relatively low since writes are serialized anyway
	db.SetMaxOpenConns(10)

	// SetMaxIdleConns: Maximum number of connections in the idle connection pool
	db.SetMaxIdleConns(5)

	// SetConnMaxLifetime: Maximum amount of time a connection may be reused
	db.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}

	// Verify WAL mode is enabled (or delete mode for in-memory databases in tests)
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return nil, fmt.Errorf("failed to check journal mode: %w", err)
	}
	// WAL mode should be enabled for file-based databases
	// In-memory databases will use "delete" or "memory" mode, which is acceptable for testing
	if journalMode != "wal" && journalMode != "delete" && journalMode != "memory" {
		return nil, fmt.Errorf("unexpected journal mode: got %s", journalMode)
	}

	// Initialize schema
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// retryOnBusy retries a database operation if it fails due to SQLITE_BUSY
// This provides an additional safety net on top of the busy_timeout pragma
func (s *SQLiteStore) retryOnBusy(operation func() error, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		// Check if error is SQLITE_BUSY (database is locked)
		if err.Error() == "database is locked (5) (SQLITE_BUSY)" {
			// Exponential backoff: 10ms, 20ms, 40ms, 80ms, 160ms
			backoff := time.Duration(10*(1<<uint(i))) * time.Millisecond
			time.Sleep(backoff)
			continue
		}

		// If it's not a busy error, return immediately
		return err
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries, err)
}

// initSchema creates the database schema if it doesn't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		experiment TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		artifact_path TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_experiment ON runs(experiment);

	CREATE TABLE IF NOT EXISTS run_params (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS run_metrics (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS registered_models (
		name TEXT PRIMARY KEY,
		next_version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS model_versions (
		model_name TEXT NOT NULL,
		version INTEGER NOT NULL,
		run_id TEXT NOT NULL,
		artifact_path TEXT NOT NULL,
		signature TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (model_name, version),
		FOREIGN KEY (model_name) REFERENCES registered_models(name)
	);

	CREATE TABLE IF NOT EXISTS model_aliases (
		model_name TEXT NOT NULL,
		alias TEXT NOT NULL,
		version INTEGER NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (model_name, alias),
		FOREIGN KEY (model_name) REFERENCES registered_models(name)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun inserts a new tracking run
func (s *SQLiteStore) CreateRun(run *models.Run) error {
	query := `
		INSERT INTO runs (id, experiment, status, started_at, artifact_path, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	err := s.retryOnBusy(func() error {
		_, execErr := s.db.Exec(query,
			run.ID,
			run.Experiment,
			run.Status,
			run.StartedAt,
			run.ArtifactPath,
			run.ErrorMessage,
		)
		return execErr
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID, including its logged params and metrics
func (s *SQLiteStore) GetRun(id string) (*models.Run, error) {
	query := `
		SELECT id, experiment, status, started_at, completed_at, artifact_path, error_message
		FROM runs WHERE id = ?
	`

	var run models.Run
	var completedAt sql.NullTime

	err := s.db.QueryRow(query, id).Scan(
		&run.ID,
		&run.Experiment,
		&run.Status,
		&run.StartedAt,
		&completedAt,
		&run.ArtifactPath,
		&run.ErrorMessage,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	run.Params = make(map[string]string)
	paramRows, err := s.db.Query(`SELECT name, value FROM run_params WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run params: %w", err)
	}
	defer paramRows.Close()
	for paramRows.Next() {
		var name, value string
		if err := paramRows.Scan(&name, &value); err != nil {
			continue
		}
		run.Params[name] = value
	}

	run.Metrics = make(map[string]float64)
	metricRows, err := s.db.Query(`SELECT name, value FROM run_metrics WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run metrics: %w", err)
	}
	defer metricRows.Close()
	for metricRows.Next() {
		var name string
		var value float64
		if err := metricRows.Scan(&name, &value); err != nil {
			continue
		}
		run.Metrics[name] = value
	}

	return &run, nil
}

// ListRuns lists runs for an experiment, newest first. Params and metrics
// are not populated; use GetRun for the full record.
func (s *SQLiteStore) ListRuns(experiment string) ([]*models.Run, error) {
	query := `
		SELECT id, experiment, status, started_at, completed_at, artifact_path, error_message
		FROM runs WHERE experiment = ? ORDER BY started_at DESC
	`

	rows, err := s.db.Query(query, experiment)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.Run, 0)
	for rows.Next() {
		var run models.Run
		var completedAt sql.NullTime
		if err := rows.Scan(
			&run.ID,
			&run.Experiment,
			&run.Status,
			&run.StartedAt,
			&completedAt,
			&run.ArtifactPath,
			&run.ErrorMessage,
		); err != nil {
			continue
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		runs = append(runs, &run)
	}

	return runs, nil
}

// runStatus fetches the current status of a run
func (s *SQLiteStore) runStatus(id string) (models.RunStatus, error) {
	var status models.RunStatus
	err := s.db.QueryRow(`SELECT status FROM runs WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get run status: %w", err)
	}
	return status, nil
}

// ensureRunOpen rejects writes against runs that already reached a terminal status
func (s *SQLiteStore) ensureRunOpen(id string) error {
	status, err := s.runStatus(id)
	if err != nil {
		return err
	}
	if status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrRunClosed, id, status)
	}
	return nil
}

// LogParam records a string parameter on an open run
func (s *SQLiteStore) LogParam(runID, name, value string) error {
	if err := s.ensureRunOpen(runID); err != nil {
		return err
	}

	query := `INSERT OR REPLACE INTO run_params (run_id, name, value) VALUES (?, ?, ?)`

	err := s.retryOnBusy(func() error {
		_, execErr := s.db.Exec(query, runID, name, value)
		return execErr
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to log param: %w", err)
	}

	return nil
}

// LogMetric records a numeric metric on an open run
func (s *SQLiteStore) LogMetric(runID, name string, value float64) error {
	if err := s.ensureRunOpen(runID); err != nil {
		return err
	}

	query := `INSERT OR REPLACE INTO run_metrics (run_id, name, value) VALUES (?, ?, ?)`

	err := s.retryOnBusy(func() error {
		_, execErr := s.db.Exec(query, runID, name, value)
		return execErr
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to log metric: %w", err)
	}

	return nil
}

// UpdateRunArtifact records the artifact location of an open run
func (s *SQLiteStore) UpdateRunArtifact(runID, artifactPath string) error {
	if err := s.ensureRunOpen(runID); err != nil {
		return err
	}

	query := `UPDATE runs SET artifact_path = ? WHERE id = ?`

	err := s.retryOnBusy(func() error {
		_, execErr := s.db.Exec(query, artifactPath, runID)
		return execErr
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to update run artifact: %w", err)
	}

	return nil
}

// FinishRun moves an open run to a terminal status. Once finished, a run
// rejects all further writes.
func (s *SQLiteStore) FinishRun(runID string, status models.RunStatus, errorMessage string) error {
	if !status.Terminal() {
		return fmt.Errorf("cannot finish run with non-terminal status %s", status)
	}
	if err := s.ensureRunOpen(runID); err != nil {
		return err
	}

	query := `UPDATE runs SET status = ?, completed_at = ?, error_message = ? WHERE id = ?`

	err := s.retryOnBusy(func() error {
		_, execErr := s.db.Exec(query, status, time.Now().UTC(), errorMessage, runID)
		return execErr
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

// CreateModelVersion registers a new version under a model name and assigns
// the next version number. Version numbers only grow, even after deletes:
// the counter on registered_models survives removed versions.
func (s *SQLiteStore) CreateModelVersion(mv *models.ModelVersion) error {
	sigJSON, err := json.Marshal(mv.Signature)
	if err != nil {
		return fmt.Errorf("failed to marshal signature: %w", err)
	}

	s.versionMu.Lock()
	defer s.versionMu.Unlock()

	err = s.retryOnBusy(func() error {
		tx, txErr := s.db.Begin()
		if txErr != nil {
			return txErr
		}
		defer tx.Rollback()

		now := time.Now().UTC()

		if _, txErr = tx.Exec(
			`INSERT OR IGNORE INTO registered_models (name, next_version, created_at) VALUES (?, 1, ?)`,
			mv.ModelName, now,
		); txErr != nil {
			return txErr
		}

		var next int
		if txErr = tx.QueryRow(
			`SELECT next_version FROM registered_models WHERE name = ?`, mv.ModelName,
		).Scan(&next); txErr != nil {
			return txErr
		}

		if _, txErr = tx.Exec(
			`INSERT INTO model_versions (model_name, version, run_id, artifact_path, signature, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			mv.ModelName, next, mv.RunID, mv.ArtifactPath, string(sigJSON), now,
		); txErr != nil {
			return txErr
		}

		if _, txErr = tx.Exec(
			`UPDATE registered_models SET next_version = ? WHERE name = ?`, next+1, mv.ModelName,
		); txErr != nil {
			return txErr
		}

		if txErr = tx.Commit(); txErr != nil {
			return txErr
		}

		mv.Version = next
		mv.CreatedAt = now
		return nil
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to create model version: %w", err)
	}

	return nil
}

// GetModelVersion retrieves a specific version of a registered model
func (s *SQLiteStore) GetModelVersion(modelName string, version int) (*models.ModelVersion, error) {
	query := `
		SELECT model_name, version, run_id, artifact_path, signature, created_at
		FROM model_versions WHERE model_name = ? AND version = ?
	`

	var mv models.ModelVersion
	var sigJSON string

	err := s.db.QueryRow(query, modelName, version).Scan(
		&mv.ModelName,
		&mv.Version,
		&mv.RunID,
		&mv.ArtifactPath,
		&sigJSON,
		&mv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s version %d", ErrModelVersionNotFound, modelName, version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model version: %w", err)
	}

	if err := json.Unmarshal([]byte(sigJSON), &mv.Signature); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signature: %w", err)
	}

	return &mv, nil
}

// ListModelVersions lists all versions of a model in ascending version order
func (s *SQLiteStore) ListModelVersions(modelName string) ([]*models.ModelVersion, error) {
	query := `
		SELECT model_name, version, run_id, artifact_path, signature, created_at
		FROM model_versions WHERE model_name = ? ORDER BY version
	`

	rows, err := s.db.Query(query, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to list model versions: %w", err)
	}
	defer rows.Close()

	versions := make([]*models.ModelVersion, 0)
	for rows.Next() {
		var mv models.ModelVersion
		var sigJSON string
		if err := rows.Scan(
			&mv.ModelName,
			&mv.Version,
			&mv.RunID,
			&mv.ArtifactPath,
			&sigJSON,
			&mv.CreatedAt,
		); err != nil {
			continue
		}
		if err := json.Unmarshal([]byte(sigJSON), &mv.Signature); err != nil {
			continue
		}
		versions = append(versions, &mv)
	}

	return versions, nil
}

// DeleteModelVersion removes a version. The model's version counter is left
// untouched, so the number is never reused. Aliases pointing at the deleted
// version keep their target and fail at resolution time.
func (s *SQLiteStore) DeleteModelVersion(modelName string, version int) error {
	result, err := s.db.Exec(`DELETE FROM model_versions WHERE model_name = ? AND version = ?`, modelName, version)
	if err != nil {
		return fmt.Errorf("failed to delete model version: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s version %d", ErrModelVersionNotFound, modelName, version)
	}

	return nil
}

// ListRegisteredModels lists all registered model names
func (s *SQLiteStore) ListRegisteredModels() ([]*models.RegisteredModel, error) {
	query := `SELECT name, created_at FROM registered_models ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered models: %w", err)
	}
	defer rows.Close()

	registered := make([]*models.RegisteredModel, 0)
	for rows.Next() {
		var rm models.RegisteredModel
		if err := rows.Scan(&rm.Name, &rm.CreatedAt); err != nil {
			continue
		}
		registered = append(registered, &rm)
	}

	return registered, nil
}

// SetAlias points an alias at an existing model version. The write is a
// single upsert, so readers always observe either the old target or the new
// one, never an intermediate state.
func (s *SQLiteStore) SetAlias(modelName, alias string, version int) error {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM model_versions WHERE model_name = ? AND version = ?`,
		modelName, version,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check model version: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s version %d", ErrModelVersionNotFound, modelName, version)
	}

	query := `
		INSERT INTO model_aliases (model_name, alias, version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(model_name, alias) DO UPDATE SET version = excluded.version, updated_at = excluded.updated_at
	`

	err = s.retryOnBusy(func() error {
		_, execErr := s.db.Exec(query, modelName, alias, version, time.Now().UTC())
		return execErr
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to set alias: %w", err)
	}

	return nil
}

// ResolveAlias returns the version an alias currently points at
func (s *SQLiteStore) ResolveAlias(modelName, alias string) (*models.AliasTarget, error) {
	query := `SELECT model_name, alias, version, updated_at FROM model_aliases WHERE model_name = ? AND alias = ?`

	var target models.AliasTarget
	err := s.db.QueryRow(query, modelName, alias).Scan(
		&target.ModelName,
		&target.Alias,
		&target.Version,
		&target.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s@%s", ErrAliasNotFound, modelName, alias)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve alias: %w", err)
	}

	return &target, nil
}

// ListAliases lists all aliases of a model
func (s *SQLiteStore) ListAliases(modelName string) ([]*models.AliasTarget, error) {
	query := `SELECT model_name, alias, version, updated_at FROM model_aliases WHERE model_name = ? ORDER BY alias`

	rows, err := s.db.Query(query, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close()

	aliases := make([]*models.AliasTarget, 0)
	for rows.Next() {
		var target models.AliasTarget
		if err := rows.Scan(&target.ModelName, &target.Alias, &target.Version, &target.UpdatedAt); err != nil {
			continue
		}
		aliases = append(aliases, &target)
	}

	return aliases, nil
}

// DeleteAlias removes an alias from a model
func (s *SQLiteStore) DeleteAlias(modelName, alias string) error {
	result, err := s.db.Exec(`DELETE FROM model_aliases WHERE model_name = ? AND alias = ?`, modelName, alias)
	if err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s@%s", ErrAliasNotFound, modelName, alias)
	}

	return nil
}
