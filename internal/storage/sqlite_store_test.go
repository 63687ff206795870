package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/spark/internal/models"
)

func newLoadedSQLiteStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spark.db")
	s := NewSQLiteStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteStoreInitTwiceFails(t *testing.T) {
	s, _ := newLoadedSQLiteStore(t)
	if err := s.Init(); err == nil {
		t.Error("expected error when initializing an existing store")
	}
}

func TestSQLiteStoreLoadWithoutInitFails(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "spark.db"))
	if err := s.Load(); err == nil {
		t.Error("expected error when loading an uninitialized store")
	}
}

func TestSQLiteStoreHabitRoundTrip(t *testing.T) {
	s, path := newLoadedSQLiteStore(t)

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h := models.Habit{
		ID:         "h1",
		Name:       "阅读",
		Kind:       models.KindGrid,
		Theme:      4,
		TargetDays: 66,
		CreatedAt:  created,
		Logs: []models.LogEntry{
			{Day: "2026-03-01", Date: "2026-03-01 09:00:00", Timestamp: 1772326800000, Mood: models.MoodNeutral, Backfilled: true},
		},
	}
	if err := s.AddHabit(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetHabit("h1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != h.Name || got.Kind != h.Kind || got.Theme != 4 || got.TargetDays != 66 {
		t.Errorf("habit mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, got.CreatedAt)
	}
	if len(got.Logs) != 1 || !got.Logs[0].Backfilled || got.Logs[0].Mood != models.MoodNeutral {
		t.Errorf("logs mismatch: %+v", got.Logs)
	}
}

func TestSQLiteStorePreservesInsertionOrder(t *testing.T) {
	s, _ := newLoadedSQLiteStore(t)

	for _, id := range []string{"c", "a", "b"} {
		h := models.Habit{ID: id, Name: id, Kind: models.KindStreak, CreatedAt: time.Now()}
		if err := s.AddHabit(h); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	habits, err := s.GetAllHabits()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"c", "a", "b"}
	for i, id := range want {
		if habits[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, habits[i].ID)
		}
	}
}

func TestSQLiteStoreUpdateAndDelete(t *testing.T) {
	s, _ := newLoadedSQLiteStore(t)

	h := models.Habit{ID: "h1", Name: "old", Kind: models.KindStreak, CreatedAt: time.Now()}
	if err := s.AddHabit(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.Name = "new"
	h.Streak = 5
	h.CompletedToday = true
	if err := s.UpdateHabit(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := s.GetHabit("h1")
	if got.Name != "new" || got.Streak != 5 || !got.CompletedToday {
		t.Errorf("update not applied: %+v", got)
	}

	if err := s.UpdateHabit(models.Habit{ID: "missing"}); err == nil {
		t.Error("expected error updating a missing habit")
	}

	if err := s.DeleteHabit("h1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.DeleteHabit("h1"); err == nil {
		t.Error("expected error deleting twice")
	}
}

func TestSQLiteStoreProfileAndWalletRoundTrip(t *testing.T) {
	s, path := newLoadedSQLiteStore(t)

	profile := models.Profile{UserID: "user_1", Nickname: "神秘打卡人", Avatar: "🤠"}
	if err := s.SaveProfile(profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wallet := models.Wallet{Points: 3, LastAwardDay: "2026-03-01"}
	if err := s.SaveWallet(wallet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Overwrites replace, not duplicate.
	wallet.Points = 4
	if err := s.SaveWallet(wallet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	defer reopened.Close()

	gotProfile, _ := reopened.GetProfile()
	if gotProfile != profile {
		t.Errorf("profile mismatch: %+v", gotProfile)
	}
	gotWallet, _ := reopened.GetWallet()
	if gotWallet.Points != 4 || gotWallet.LastAwardDay != "2026-03-01" {
		t.Errorf("wallet mismatch: %+v", gotWallet)
	}
}

func TestSQLiteStoreEmptyStateDefaults(t *testing.T) {
	s, _ := newLoadedSQLiteStore(t)

	wallet, err := s.GetWallet()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Points != 0 || wallet.LastAwardDay != "" {
		t.Errorf("expected zero wallet, got %+v", wallet)
	}

	profile, err := s.GetProfile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.UserID != "" {
		t.Errorf("expected empty profile, got %+v", profile)
	}
}
