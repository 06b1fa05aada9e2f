package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/debaite/debaite/internal/core"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{
		db:   db,
		path: dbPath,
	}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS debates (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		mode TEXT NOT NULL,
		participants_json TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS turns (
		debate_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		round INTEGER NOT NULL,
		speaker TEXT NOT NULL,
		text TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (debate_id, seq),
		FOREIGN KEY (debate_id) REFERENCES debates(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_turns_debate_id ON turns(debate_id);
	CREATE INDEX IF NOT EXISTS idx_debates_created_at ON debates(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveDebate stores a record and its turns in one transaction.
func (s *SQLiteStorage) SaveDebate(record *core.DebateRecord) error {
	participantsJSON, err := json.Marshal(record.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
	INSERT INTO debates (id, topic, mode, participants_json, summary, status, created_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Topic,
		record.Mode.String(),
		string(participantsJSON),
		record.Summary,
		string(record.Status),
		record.CreatedAt,
		record.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert debate: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO turns (debate_id, seq, round, speaker, text, kind, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare turn insert: %w", err)
	}
	defer stmt.Close()

	for i, turn := range record.Turns {
		if _, err := stmt.Exec(record.ID, i, turn.Round, turn.Speaker, turn.Text, string(turn.Kind), turn.Timestamp); err != nil {
			return fmt.Errorf("failed to insert turn %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit debate: %w", err)
	}
	return nil
}

// GetDebate retrieves a debate with its turns by ID.
func (s *SQLiteStorage) GetDebate(id string) (*core.DebateRecord, error) {
	var record core.DebateRecord
	var mode, participantsJSON string
	var completedAt sql.NullTime

	err := s.db.QueryRow(`
	SELECT id, topic, mode, participants_json, summary, status, created_at, completed_at
	FROM debates
	WHERE id = ?
	`, id).Scan(
		&record.ID,
		&record.Topic,
		&mode,
		&participantsJSON,
		&record.Summary,
		&record.Status,
		&record.CreatedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debate: %w", err)
	}

	parsedMode, err := core.ParseContextMode(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored mode: %w", err)
	}
	record.Mode = parsedMode

	if err := json.Unmarshal([]byte(participantsJSON), &record.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}

	if completedAt.Valid {
		record.CompletedAt = &completedAt.Time
	}

	rows, err := s.db.Query(`
	SELECT round, speaker, text, kind, created_at
	FROM turns
	WHERE debate_id = ?
	ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var turn core.Turn
		var kind string
		if err := rows.Scan(&turn.Round, &turn.Speaker, &turn.Text, &kind, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.Kind = core.TurnKind(kind)
		record.Turns = append(record.Turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}

	return &record, nil
}

// ListDebates returns debate summaries, newest first.
func (s *SQLiteStorage) ListDebates(limit, offset int) ([]*core.DebateSummary, error) {
	rows, err := s.db.Query(`
	SELECT d.id, d.topic, d.mode, d.participants_json, d.created_at,
		   (SELECT COUNT(*) FROM turns WHERE debate_id = d.id) as turn_count
	FROM debates d
	ORDER BY d.created_at DESC
	LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list debates: %w", err)
	}
	defer rows.Close()

	var summaries []*core.DebateSummary
	for rows.Next() {
		var summary core.DebateSummary
		var mode, participantsJSON string

		err := rows.Scan(
			&summary.ID,
			&summary.Topic,
			&mode,
			&participantsJSON,
			&summary.CreatedAt,
			&summary.TurnCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debate summary: %w", err)
		}

		if parsed, err := core.ParseContextMode(mode); err == nil {
			summary.Mode = parsed
		}
		var participants []core.Participant
		if err := json.Unmarshal([]byte(participantsJSON), &participants); err == nil {
			summary.ParticipantCount = len(participants)
		}

		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summaries: %w", err)
	}

	return summaries, nil
}

// DeleteDebate deletes a debate and its turns.
func (s *SQLiteStorage) DeleteDebate(id string) error {
	_, err := s.db.Exec("DELETE FROM debates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete debate: %w", err)
	}
	return nil
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "debaite.db"
	}
	return filepath.Join(home, ".debaite", "debaite.db")
}
