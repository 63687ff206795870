// Package habit owns the habit lifecycle: creation, daily check-ins,
// retroactive card usage, the one-point-per-day award, and two-phase
// deletion. All local mutations commit synchronously; remote ledger writes
// are best-effort and never block or roll back local state.
package habit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/julianstephens/spark/internal/constants"
	"github.com/julianstephens/spark/internal/ledger"
	"github.com/julianstephens/spark/internal/models"
	"github.com/julianstephens/spark/internal/storage"
)

// Validation rejections. These never carry partial state: an operation that
// returns one of them has mutated nothing.
var (
	ErrAlreadyCheckedIn   = errors.New("already checked in today")
	ErrAlreadyLoggedToday = errors.New("already logged today")
	ErrChallengeComplete  = errors.New("challenge already complete")
	ErrInvalidMood        = errors.New("invalid mood")
	ErrKindMismatch       = errors.New("operation does not apply to this habit kind")
	ErrNoCards            = errors.New("no retroactive cards available")
	ErrNoPendingDelete    = errors.New("no deletion pending")
)

type Service struct {
	store  storage.Provider
	ledger *ledger.Client
	log    zerolog.Logger

	// now is swapped in tests to cross day boundaries.
	now func() time.Time

	pendingDelete string
}

func NewService(store storage.Provider, lc *ledger.Client, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		ledger: lc,
		log:    logger,
		now:    time.Now,
	}
}

func (s *Service) today() string {
	return s.now().Format(constants.DayFormat)
}

// CheckInResult reports a successful check-in. Awarded is true when this
// check-in earned the single daily point.
type CheckInResult struct {
	Habit   models.Habit
	Awarded bool
}

// Create persists a new habit. A blank name is a silent no-op and returns a
// nil habit. Grid targets are clamped into the allowed range; the cosmetic
// theme is random.
func (s *Service) Create(name string, kind models.HabitKind, targetDays int) (*models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if kind != models.KindStreak && kind != models.KindGrid {
		return nil, fmt.Errorf("invalid habit kind: %s", kind)
	}

	h := models.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		Theme:     rand.IntN(constants.ThemeCount),
		CreatedAt: s.now(),
	}
	if kind == models.KindGrid {
		h.TargetDays = clampTarget(targetDays)
	}

	if err := s.store.AddHabit(h); err != nil {
		return nil, err
	}
	return &h, nil
}

func clampTarget(days int) int {
	if days < constants.MinTargetDays {
		return constants.MinTargetDays
	}
	if days > constants.MaxTargetDays {
		return constants.MaxTargetDays
	}
	return days
}

func (s *Service) Get(id string) (models.Habit, error) {
	return s.store.GetHabit(id)
}

func (s *Service) List() ([]models.Habit, error) {
	return s.store.GetAllHabits()
}

// CheckInStreak marks a streak habit done for today. A streak check-in is
// permanent for the day: repeating it is rejected, never toggled off.
func (s *Service) CheckInStreak(id string) (CheckInResult, error) {
	h, err := s.store.GetHabit(id)
	if err != nil {
		return CheckInResult{}, err
	}
	if h.Kind != models.KindStreak {
		return CheckInResult{}, ErrKindMismatch
	}
	if h.CompletedToday {
		return CheckInResult{}, ErrAlreadyCheckedIn
	}

	h.CompletedToday = true
	h.Streak++
	if err := s.store.UpdateHabit(h); err != nil {
		return CheckInResult{}, err
	}

	awarded, err := s.tryDailyAward()
	if err != nil {
		return CheckInResult{}, err
	}
	return CheckInResult{Habit: h, Awarded: awarded}, nil
}

// OpenGridCheckIn validates that a grid habit can accept a check-in today.
// A later SubmitGridCheckIn re-validates, so this is safe to call purely
// for gating a prompt.
func (s *Service) OpenGridCheckIn(id string) error {
	h, err := s.store.GetHabit(id)
	if err != nil {
		return err
	}
	return s.gridCheckInAllowed(h)
}

func (s *Service) gridCheckInAllowed(h models.Habit) error {
	if h.Kind != models.KindGrid {
		return ErrKindMismatch
	}
	if h.GridComplete() {
		return ErrChallengeComplete
	}
	if h.LoggedOn(s.today()) {
		return ErrAlreadyLoggedToday
	}
	return nil
}

// SubmitGridCheckIn appends today's log entry with the given mood and comment.
func (s *Service) SubmitGridCheckIn(id string, mood models.Mood, comment string) (CheckInResult, error) {
	h, err := s.store.GetHabit(id)
	if err != nil {
		return CheckInResult{}, err
	}
	if err := s.gridCheckInAllowed(h); err != nil {
		return CheckInResult{}, err
	}
	if !mood.Valid() {
		return CheckInResult{}, ErrInvalidMood
	}

	now := s.now()
	h.Logs = append(h.Logs, models.LogEntry{
		Day:       now.Format(constants.DayFormat),
		Date:      now.Format(constants.DateTimeFormat),
		Timestamp: now.UnixMilli(),
		Mood:      mood,
		Comment:   comment,
	})
	if err := s.store.UpdateHabit(h); err != nil {
		return CheckInResult{}, err
	}

	awarded, err := s.tryDailyAward()
	if err != nil {
		return CheckInResult{}, err
	}
	return CheckInResult{Habit: h, Awarded: awarded}, nil
}

// UseRetroactiveCard spends one card to satisfy a missed check-in. cards is
// the caller's derived redeemable balance from the latest transaction view.
// The local advancement is the commit point and runs synchronously on the
// caller's goroutine; nothing remote is touched. The returned transaction is
// handed to RecordCardUsage, which may run later and in the background.
// Retroactive check-ins never earn the daily point.
func (s *Service) UseRetroactiveCard(id string, profile models.Profile, cards int) (models.Habit, models.Transaction, error) {
	if cards <= 0 {
		return models.Habit{}, models.Transaction{}, ErrNoCards
	}

	h, err := s.store.GetHabit(id)
	if err != nil {
		return models.Habit{}, models.Transaction{}, err
	}

	now := s.now()
	switch h.Kind {
	case models.KindStreak:
		if h.CompletedToday {
			return models.Habit{}, models.Transaction{}, ErrAlreadyCheckedIn
		}
		h.Streak++
	case models.KindGrid:
		if err := s.gridCheckInAllowed(h); err != nil {
			return models.Habit{}, models.Transaction{}, err
		}
		h.Logs = append(h.Logs, models.LogEntry{
			Day:        now.Format(constants.DayFormat),
			Date:       "补签 " + now.Format(constants.DayFormat),
			Timestamp:  now.UnixMilli(),
			Mood:       models.MoodNeutral,
			Comment:    "使用补签卡",
			Backfilled: true,
		})
	default:
		return models.Habit{}, models.Transaction{}, ErrKindMismatch
	}

	if err := s.store.UpdateHabit(h); err != nil {
		return models.Habit{}, models.Transaction{}, err
	}

	tx := models.Transaction{
		UserID:     profile.UserID,
		UserName:   profile.Nickname,
		UserAvatar: profile.Avatar,
		ItemName:   constants.UsedCardMarker,
		ItemIcon:   constants.UsedCardIcon,
		Cost:       0,
		DateStr:    now.Format(constants.DateTimeFormat),
	}
	return h, tx, nil
}

// RecordCardUsage appends a committed card usage to the shared ledger,
// best-effort. A failure only delays reconciliation of the shared card
// count; the local advancement is never rolled back. RecordCardUsage
// touches the network only, never local state.
func (s *Service) RecordCardUsage(ctx context.Context, tx models.Transaction) {
	if err := s.ledger.AppendTransaction(ctx, tx); err != nil {
		s.log.Warn().Err(err).Str("user", tx.UserID).Msg("failed to record card usage on ledger")
	}
}

// RequestDelete stages a habit for deletion pending explicit confirmation.
func (s *Service) RequestDelete(id string) error {
	if _, err := s.store.GetHabit(id); err != nil {
		return err
	}
	s.pendingDelete = id
	return nil
}

// PendingDelete returns the staged habit id, if any.
func (s *Service) PendingDelete() string {
	return s.pendingDelete
}

// ConfirmDelete removes the staged habit and all its logs. There is no undo.
func (s *Service) ConfirmDelete() (models.Habit, error) {
	if s.pendingDelete == "" {
		return models.Habit{}, ErrNoPendingDelete
	}
	id := s.pendingDelete
	s.pendingDelete = ""

	h, err := s.store.GetHabit(id)
	if err != nil {
		return models.Habit{}, err
	}
	if err := s.store.DeleteHabit(id); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Service) CancelDelete() {
	s.pendingDelete = ""
}

// tryDailyAward grants the single daily point if it has not been earned yet
// today. Idempotent per calendar day across all habits.
func (s *Service) tryDailyAward() (bool, error) {
	wallet, err := s.store.GetWallet()
	if err != nil {
		return false, err
	}

	today := s.today()
	if wallet.LastAwardDay == today {
		return false, nil
	}

	wallet.Points++
	wallet.LastAwardDay = today
	if err := s.store.SaveWallet(wallet); err != nil {
		return false, err
	}
	return true, nil
}

// SortForDisplay orders habits for presentation: streak habits first, then
// grid habits by ascending target length; ties keep insertion order.
func SortForDisplay(habits []models.Habit) []models.Habit {
	sorted := make([]models.Habit, len(habits))
	copy(sorted, habits)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Kind != b.Kind {
			return a.Kind == models.KindStreak
		}
		if a.Kind == models.KindGrid {
			return a.TargetDays < b.TargetDays
		}
		return false
	})

	return sorted
}
