package models

import "time"

type HabitKind string

const (
	KindStreak HabitKind = "streak"
	KindGrid   HabitKind = "grid"
)

type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodNeutral, MoodSad:
		return true
	}
	return false
}

// Habit is a tracked goal. Kind is fixed at creation: a streak habit runs
// forever and counts consecutive days, a grid habit ends after TargetDays
// dated log entries.
type Habit struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Kind           HabitKind  `json:"kind"`
	Theme          int        `json:"theme"`
	Streak         int        `json:"streak"`
	CompletedToday bool       `json:"completed_today"`
	TargetDays     int        `json:"target_days,omitempty"`
	Logs           []LogEntry `json:"logs,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// LogEntry is a single grid check-in. Day is the canonical calendar-day
// token (local time, derived from Timestamp); Date is display text only.
type LogEntry struct {
	Day        string `json:"day"`
	Date       string `json:"date"`
	Timestamp  int64  `json:"timestamp"`
	Mood       Mood   `json:"mood"`
	Comment    string `json:"comment,omitempty"`
	Backfilled bool   `json:"backfilled,omitempty"`
}

// LoggedOn reports whether the habit already has a log entry for the given day.
func (h Habit) LoggedOn(day string) bool {
	for _, e := range h.Logs {
		if e.Day == day {
			return true
		}
	}
	return false
}

// GridComplete reports whether a grid habit has reached its target length.
func (h Habit) GridComplete() bool {
	return h.Kind == KindGrid && h.TargetDays > 0 && len(h.Logs) >= h.TargetDays
}
