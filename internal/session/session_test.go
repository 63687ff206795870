package session

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/spark/internal/constants"
	"github.com/julianstephens/spark/internal/storage"
)

func newStore(t *testing.T) storage.Provider {
	t.Helper()
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "spark.json"))
	if err := s.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	return s
}

func TestEnsureGeneratesStableIdentity(t *testing.T) {
	store := newStore(t)

	first, err := Ensure(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(first.UserID, "user_") {
		t.Errorf("expected user_ prefix, got %q", first.UserID)
	}
	if first.Nickname != constants.DefaultNickname {
		t.Errorf("expected default nickname, got %q", first.Nickname)
	}
	if first.Avatar != constants.DefaultAvatar {
		t.Errorf("expected default avatar, got %q", first.Avatar)
	}

	second, err := Ensure(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.UserID != first.UserID {
		t.Errorf("identity must be stable: %q vs %q", first.UserID, second.UserID)
	}
}

func TestSetNicknameBlankIsNoOp(t *testing.T) {
	store := newStore(t)

	p, err := SetNickname(store, "  小明 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Nickname != "小明" {
		t.Errorf("expected trimmed nickname, got %q", p.Nickname)
	}

	p, err = SetNickname(store, "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Nickname != "小明" {
		t.Errorf("blank nickname must be a no-op, got %q", p.Nickname)
	}
}

func TestSetAvatarGlyph(t *testing.T) {
	store := newStore(t)

	p, err := SetAvatarGlyph(store, "🐱")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Avatar != "🐱" {
		t.Errorf("expected glyph avatar, got %q", p.Avatar)
	}
	if IsImage(p.Avatar) {
		t.Error("glyph must not be treated as an image")
	}
}

func TestSetAvatarImageEnforcesCeiling(t *testing.T) {
	store := newStore(t)

	tooBig := bytes.Repeat([]byte("x"), constants.MaxAvatarBytes+1)
	if _, err := SetAvatarImage(store, tooBig, "image/png"); !errors.Is(err, ErrAvatarTooLarge) {
		t.Fatalf("expected ErrAvatarTooLarge, got %v", err)
	}

	// The oversize upload must not have touched the stored avatar.
	p, err := Ensure(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Avatar != constants.DefaultAvatar {
		t.Errorf("avatar must be unchanged after a rejected upload, got %q", p.Avatar)
	}

	p, err = SetAvatarImage(store, []byte("tiny"), "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(p.Avatar, "data:image/jpeg;base64,") {
		t.Errorf("expected data URI avatar, got %q", p.Avatar)
	}
	if !IsImage(p.Avatar) {
		t.Error("data URI must be treated as an image")
	}
}

func TestSetBackgroundEnforcesCeilingAndResets(t *testing.T) {
	store := newStore(t)

	tooBig := bytes.Repeat([]byte("x"), constants.MaxBackgroundBytes+1)
	if _, err := SetBackground(store, tooBig, "image/png"); !errors.Is(err, ErrBackgroundTooLarge) {
		t.Fatalf("expected ErrBackgroundTooLarge, got %v", err)
	}

	// The background ceiling is higher than the avatar's.
	betweenCeilings := bytes.Repeat([]byte("x"), constants.MaxAvatarBytes+1)
	p, err := SetBackground(store, betweenCeilings, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(p.Background, "data:image/png;base64,") {
		t.Errorf("expected default png data URI, got %.40q", p.Background)
	}

	p, err = ResetBackground(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Background != "" {
		t.Errorf("expected empty background after reset, got %.40q", p.Background)
	}
}
