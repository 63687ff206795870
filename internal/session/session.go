// Package session owns the anonymous device identity and profile edits.
// The profile is local-only; it is never verified and only leaves the
// device as attribution on ledger transactions.
package session

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/spark/internal/constants"
	"github.com/julianstephens/spark/internal/models"
	"github.com/julianstephens/spark/internal/storage"
)

var (
	ErrAvatarTooLarge     = errors.New("avatar image exceeds size limit")
	ErrBackgroundTooLarge = errors.New("background image exceeds size limit")
)

// Ensure loads the profile, generating and persisting a stable anonymous
// identity on first run.
func Ensure(store storage.Provider) (models.Profile, error) {
	p, err := store.GetProfile()
	if err != nil {
		return models.Profile{}, err
	}
	if p.UserID != "" {
		return p, nil
	}

	p.UserID = "user_" + uuid.New().String()
	if p.Nickname == "" {
		p.Nickname = constants.DefaultNickname
	}
	if p.Avatar == "" {
		p.Avatar = constants.DefaultAvatar
	}

	if err := store.SaveProfile(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// SetNickname updates the display name. A blank name is a silent no-op.
func SetNickname(store storage.Provider, name string) (models.Profile, error) {
	p, err := Ensure(store)
	if err != nil {
		return models.Profile{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return p, nil
	}

	p.Nickname = name
	if err := store.SaveProfile(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// SetAvatarGlyph sets an emoji (or other short text) avatar.
func SetAvatarGlyph(store storage.Provider, glyph string) (models.Profile, error) {
	glyph = strings.TrimSpace(glyph)
	if glyph == "" {
		return Ensure(store)
	}

	p, err := Ensure(store)
	if err != nil {
		return models.Profile{}, err
	}
	p.Avatar = glyph
	if err := store.SaveProfile(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// SetAvatarImage stores an uploaded avatar as an inline data URI. The size
// ceiling is checked before any mutation.
func SetAvatarImage(store storage.Provider, data []byte, mimeType string) (models.Profile, error) {
	if len(data) > constants.MaxAvatarBytes {
		return models.Profile{}, ErrAvatarTooLarge
	}

	p, err := Ensure(store)
	if err != nil {
		return models.Profile{}, err
	}
	p.Avatar = dataURI(data, mimeType)
	if err := store.SaveProfile(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// SetBackground stores an uploaded background image as an inline data URI.
// The background ceiling is larger than the avatar's; both are enforced
// before any mutation.
func SetBackground(store storage.Provider, data []byte, mimeType string) (models.Profile, error) {
	if len(data) > constants.MaxBackgroundBytes {
		return models.Profile{}, ErrBackgroundTooLarge
	}

	p, err := Ensure(store)
	if err != nil {
		return models.Profile{}, err
	}
	p.Background = dataURI(data, mimeType)
	if err := store.SaveProfile(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// ResetBackground restores the default (empty) background.
func ResetBackground(store storage.Provider) (models.Profile, error) {
	p, err := Ensure(store)
	if err != nil {
		return models.Profile{}, err
	}
	p.Background = ""
	if err := store.SaveProfile(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func dataURI(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// IsImage reports whether an avatar/background value is an image reference
// rather than a glyph.
func IsImage(s string) bool {
	return strings.HasPrefix(s, "http") || strings.HasPrefix(s, "data:image")
}
