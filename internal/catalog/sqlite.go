package catalog

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"marketgateway/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite loads the instrument catalog from a SQLite database,
// creating and seeding the schema with the built-in table on first
// use. The catalog is read once at startup and immutable afterwards.
func OpenSQLite(path string, log *zap.Logger) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS instruments (
			symbol TEXT PRIMARY KEY,
			name   TEXT NOT NULL,
			type   TEXT NOT NULL DEFAULT 'other'
		);
	`); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	rows, err := loadInstruments(db)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := seedInstruments(db, staticInstruments); err != nil {
			return nil, err
		}
		rows = staticInstruments
		log.Info("seeded instrument catalog", zap.String("path", path),
			zap.Int("instruments", len(rows)))
	}

	log.Info("instrument catalog loaded", zap.String("path", path),
		zap.Int("instruments", len(rows)))
	return New(rows), nil
}

func loadInstruments(db *sql.DB) ([]Instrument, error) {
	rows, err := db.Query(`SELECT symbol, name, type FROM instruments ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("sqlite select instruments: %w", err)
	}
	defer rows.Close()

	var out []Instrument
	for rows.Next() {
		var in Instrument
		var typ string
		if err := rows.Scan(&in.Symbol, &in.Name, &typ); err != nil {
			return nil, fmt.Errorf("sqlite scan instrument: %w", err)
		}
		in.Type = model.InstrumentType(typ)
		out = append(out, in)
	}
	return out, rows.Err()
}

func seedInstruments(db *sql.DB, rows []Instrument) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO instruments (symbol, name, type) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()
	for _, in := range rows {
		if _, err := stmt.Exec(in.Symbol, in.Name, string(in.Type)); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite seed %s: %w", in.Symbol, err)
		}
	}
	return tx.Commit()
}
