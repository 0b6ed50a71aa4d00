package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps SQLite-backed history of commands and generated outputs.
type Store struct {
	DB *sql.DB
}

// New opens (or creates) the database at path and ensures schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS command_runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            command TEXT NOT NULL,
            status INTEGER NOT NULL,
            output TEXT,
            started_at TIMESTAMP NOT NULL,
            duration_ms INTEGER
        );`,
		`CREATE TABLE IF NOT EXISTS output_files (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            input_path TEXT NOT NULL,
            output_path TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_command_runs_started ON command_runs(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_output_files_output ON output_files(output_path);`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// CommandRecord captures one external command invocation.
type CommandRecord struct {
	ID        int64
	Command   string
	Status    int
	Output    string
	StartedAt time.Time
	Duration  time.Duration
}

// OutputRecord captures a relocated output file.
type OutputRecord struct {
	ID         int64
	InputPath  string
	OutputPath string
	CreatedAt  time.Time
}

// RecordCommand stores a finished command.
func (s *Store) RecordCommand(command string, status int, output string, started time.Time, duration time.Duration) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`INSERT INTO command_runs (command, status, output, started_at, duration_ms) VALUES (?, ?, ?, ?, ?);`,
		command, status, output, started.UTC(), duration.Milliseconds())
	return err
}

// RecordOutput stores a relocated output.
func (s *Store) RecordOutput(input, output string) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`INSERT INTO output_files (input_path, output_path, created_at) VALUES (?, ?, ?);`,
		input, output, time.Now().UTC())
	return err
}

// RecentCommands returns the latest commands up to limit, newest first.
func (s *Store) RecentCommands(limit int) ([]CommandRecord, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	rows, err := s.DB.Query(`SELECT id, command, status, output, started_at, duration_ms FROM command_runs ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []CommandRecord
	for rows.Next() {
		var rec CommandRecord
		var output sql.NullString
		var durationMS sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Command, &rec.Status, &output, &rec.StartedAt, &durationMS); err != nil {
			return nil, err
		}
		rec.Output = output.String
		rec.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// RecentOutputs returns the latest relocated outputs up to limit, newest first.
func (s *Store) RecentOutputs(limit int) ([]OutputRecord, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	rows, err := s.DB.Query(`SELECT id, input_path, output_path, created_at FROM output_files ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []OutputRecord
	for rows.Next() {
		var rec OutputRecord
		if err := rows.Scan(&rec.ID, &rec.InputPath, &rec.OutputPath, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
