package session

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/lightsweep/internal/errors"
	"codeberg.org/mutker/lightsweep/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

const defaultDirPerm = 0o755

// Run outcomes
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
)

// RunRecord is one journal entry: a single color-mode run (or standby
// measurement) with its outcome and counters.
type RunRecord struct {
	ID           string
	ModelID      string
	ColorMode    string
	RowsWritten  int
	ZeroReadings int
	Outcome      string
	Reason       string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Repository persists run records across invocations
type Repository interface {
	Record(ctx context.Context, rec *RunRecord) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRepository opens (and if needed creates) the session journal
func NewRepository(dbPath string) (Repository, error) {
	if dbPath == "" {
		return nil, errors.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing session journal at: %s", dbPath)

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return nil, errors.Wrap(ErrStorageInit, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errors.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Record(ctx context.Context, rec *RunRecord) error {
	if rec == nil || rec.ID == "" {
		return errors.New(ErrInvalidRecord)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO runs (
            id, model_id, color_mode, rows_written, zero_readings,
            outcome, reason, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		rec.ID,
		rec.ModelID,
		rec.ColorMode,
		rec.RowsWritten,
		rec.ZeroReadings,
		rec.Outcome,
		rec.Reason,
		rec.StartedAt.Unix(),
		rec.FinishedAt.Unix(),
	)
	if err != nil {
		return errors.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.Wrap(ErrStorageClose, err)
	}

	return nil
}
