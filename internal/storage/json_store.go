package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/spark/internal/models"
)

type fileStore struct {
	Version int            `json:"version"`
	Profile models.Profile `json:"profile"`
	Wallet  models.Wallet  `json:"wallet"`
	// Habits is a slice, not a map: display ties are broken by insertion
	// order, so persistence must preserve it.
	Habits []models.Habit `json:"habits"`
}

// JSONStore persists the whole state as one JSON file.
//
// Concurrency note:
//   - JSONStore is not safe for concurrent use by multiple goroutines without
//     external synchronization; callers mutate it from a single goroutine.
//   - Running multiple spark processes against the same storage path at the
//     same time is not supported and may lead to data loss.
type JSONStore struct {
	path  string
	store *fileStore
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &fileStore{Version: 1}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'spark init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &fileStore{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetProfile() (models.Profile, error) {
	if s.store == nil {
		return models.Profile{}, fmt.Errorf("storage not loaded")
	}
	return s.store.Profile, nil
}

func (s *JSONStore) SaveProfile(p models.Profile) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Profile = p
	return s.save()
}

func (s *JSONStore) GetWallet() (models.Wallet, error) {
	if s.store == nil {
		return models.Wallet{}, fmt.Errorf("storage not loaded")
	}
	return s.store.Wallet, nil
}

func (s *JSONStore) SaveWallet(w models.Wallet) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Wallet = w
	return s.save()
}

func (s *JSONStore) AddHabit(h models.Habit) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Habits = append(s.store.Habits, h)
	return s.save()
}

func (s *JSONStore) GetHabit(id string) (models.Habit, error) {
	if s.store == nil {
		return models.Habit{}, fmt.Errorf("storage not loaded")
	}
	for _, h := range s.store.Habits {
		if h.ID == id {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit not found: %s", id)
}

func (s *JSONStore) GetAllHabits() ([]models.Habit, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	habits := make([]models.Habit, len(s.store.Habits))
	copy(habits, s.store.Habits)
	return habits, nil
}

func (s *JSONStore) UpdateHabit(h models.Habit) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	for i := range s.store.Habits {
		if s.store.Habits[i].ID == h.ID {
			s.store.Habits[i] = h
			return s.save()
		}
	}
	return fmt.Errorf("habit not found: %s", h.ID)
}

func (s *JSONStore) DeleteHabit(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	for i := range s.store.Habits {
		if s.store.Habits[i].ID == id {
			s.store.Habits = append(s.store.Habits[:i], s.store.Habits[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("habit not found: %s", id)
}

// GetConfigPath returns the path to the underlying storage file.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
