package session

import (
	"database/sql"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            model_id TEXT,
            color_mode TEXT,
            rows_written INTEGER,
            zero_readings INTEGER,
            outcome TEXT,
            reason TEXT,
            started_at INTEGER,
            finished_at INTEGER
        )
    `)

	return err
}
