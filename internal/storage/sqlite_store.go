package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/spark/internal/models"
	_ "modernc.org/sqlite"
)

// schema is applied idempotently on every open. Log entries are stored as a
// JSON column: they are only ever read and written as a unit with their habit.
const schema = `
CREATE TABLE IF NOT EXISTS state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS habits (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	kind            TEXT NOT NULL,
	theme           INTEGER NOT NULL DEFAULT 0,
	streak          INTEGER NOT NULL DEFAULT 0,
	completed_today INTEGER NOT NULL DEFAULT 0,
	target_days     INTEGER NOT NULL DEFAULT 0,
	logs            TEXT NOT NULL DEFAULT '[]',
	created_at      TEXT NOT NULL,
	position        INTEGER NOT NULL
);
`

const (
	stateKeyProfile = "profile"
	stateKeyWallet  = "wallet"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	return s.open()
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'spark init' first")
	}

	return s.open()
}

func (s *SQLiteStore) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) getState(key string, out any) error {
	var value string
	err := s.db.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(value), out)
}

func (s *SQLiteStore) setState(key string, in any) error {
	value, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	_, err = s.db.Exec("INSERT OR REPLACE INTO state (key, value) VALUES (?, ?)", key, string(value))
	return err
}

func (s *SQLiteStore) GetProfile() (models.Profile, error) {
	var p models.Profile
	if err := s.getState(stateKeyProfile, &p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s *SQLiteStore) SaveProfile(p models.Profile) error {
	return s.setState(stateKeyProfile, p)
}

func (s *SQLiteStore) GetWallet() (models.Wallet, error) {
	var w models.Wallet
	if err := s.getState(stateKeyWallet, &w); err != nil {
		return models.Wallet{}, err
	}
	return w, nil
}

func (s *SQLiteStore) SaveWallet(w models.Wallet) error {
	return s.setState(stateKeyWallet, w)
}

func (s *SQLiteStore) AddHabit(h models.Habit) error {
	logs, err := json.Marshal(h.Logs)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}

	// position keeps insertion order for display tiebreaks
	var next int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(position), 0) + 1 FROM habits").Scan(&next); err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (id, name, kind, theme, streak, completed_today, target_days, logs, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, string(h.Kind), h.Theme, h.Streak, h.CompletedToday, h.TargetDays,
		string(logs), h.CreatedAt.Format(time.RFC3339Nano), next,
	)
	return err
}

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var h models.Habit
	var kind, logs, createdAt string
	var completed bool

	err := row.Scan(&h.ID, &h.Name, &kind, &h.Theme, &h.Streak, &completed, &h.TargetDays, &logs, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Kind = models.HabitKind(kind)
	h.CompletedToday = completed
	if err := json.Unmarshal([]byte(logs), &h.Logs); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse logs: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		h.CreatedAt = t
	}

	return h, nil
}

func (s *SQLiteStore) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT id, name, kind, theme, streak, completed_today, target_days, logs, created_at
		FROM habits WHERE id = ?`, id)

	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return models.Habit{}, fmt.Errorf("habit not found: %s", id)
	}
	return h, err
}

func (s *SQLiteStore) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(`
		SELECT id, name, kind, theme, streak, completed_today, target_days, logs, created_at
		FROM habits ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *SQLiteStore) UpdateHabit(h models.Habit) error {
	logs, err := json.Marshal(h.Logs)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE habits SET name = ?, kind = ?, theme = ?, streak = ?, completed_today = ?,
			target_days = ?, logs = ?
		WHERE id = ?`,
		h.Name, string(h.Kind), h.Theme, h.Streak, h.CompletedToday, h.TargetDays, string(logs), h.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("habit not found: %s", h.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteHabit(id string) error {
	res, err := s.db.Exec("DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("habit not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}
