// Package session keeps the small amount of state the client persists
// locally: who is logged in, the preferred theme and which tasks the user
// starred.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/nhle/tareas/internal/store"
)

// Persisted keys.
const (
	KeyUserID    = "userId"
	KeyUserName  = "userName"
	KeyTheme     = "theme"
	KeyFavorites = "favoritos"
)

// Mode is the UI color scheme.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode accepts "light" or "dark" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLight:
		return ModeLight, nil
	case ModeDark:
		return ModeDark, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeDark {
		return ModeLight
	}
	return ModeDark
}

// Store is the session store. It never caches: every read goes to the
// backing KV so that two commands run back to back see each other's
// writes.
type Store struct {
	kv store.KV
}

// New creates a session store over kv.
func New(kv store.KV) *Store {
	return &Store{kv: kv}
}

// ActiveUserID returns the logged-in user, if any. A stored value that is
// not an integer is treated as no user.
func (s *Store) ActiveUserID(ctx context.Context) (int, bool) {
	raw, err := s.kv.Get(ctx, KeyUserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("session: reading %s: %v", KeyUserID, err)
		}
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("session: ignoring malformed %s %q", KeyUserID, raw)
		return 0, false
	}
	return id, true
}

// SetActiveUserID records id as the logged-in user.
func (s *Store) SetActiveUserID(ctx context.Context, id int) error {
	return s.kv.Set(ctx, KeyUserID, strconv.Itoa(id))
}

// UserName returns the display name saved at login, or "".
func (s *Store) UserName(ctx context.Context) string {
	name, err := s.kv.Get(ctx, KeyUserName)
	if err != nil {
		return ""
	}
	return name
}

// SetUserName saves the display name returned by login.
func (s *Store) SetUserName(ctx context.Context, name string) error {
	return s.kv.Set(ctx, KeyUserName, name)
}

// Clear logs the user out. Theme and favorites survive a logout.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, KeyUserID); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if err := s.kv.Remove(ctx, KeyUserName); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Theme returns the stored theme, defaulting to light.
func (s *Store) Theme(ctx context.Context) Mode {
	raw, err := s.kv.Get(ctx, KeyTheme)
	if err != nil {
		return ModeLight
	}
	if Mode(raw) == ModeDark {
		return ModeDark
	}
	return ModeLight
}

// SetTheme persists the theme.
func (s *Store) SetTheme(ctx context.Context, mode Mode) error {
	if mode != ModeDark {
		mode = ModeLight
	}
	return s.kv.Set(ctx, KeyTheme, string(mode))
}

// FavoriteIDs returns the starred task ids. Missing or malformed data
// yields an empty set; this never fails.
func (s *Store) FavoriteIDs(ctx context.Context) map[int]struct{} {
	set := make(map[int]struct{})

	raw, err := s.kv.Get(ctx, KeyFavorites)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("session: reading %s: %v", KeyFavorites, err)
		}
		return set
	}

	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		log.Printf("session: ignoring malformed %s: %v", KeyFavorites, err)
		return set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// SetFavoriteIDs persists the set as a JSON array in ascending order.
func (s *Store) SetFavoriteIDs(ctx context.Context, ids map[int]struct{}) error {
	list := make([]int, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Ints(list)

	bs, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}
	return s.kv.Set(ctx, KeyFavorites, string(bs))
}
