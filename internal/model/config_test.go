package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"golang.org/x/text/language"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	is.NoErr(err)
	is.Equal(cfg.API.BaseURL, "http://localhost:3333")
	is.Equal(cfg.API.TimeoutSec, 30)
	is.Equal(cfg.Session.Backend, SessionBackendSQLite)
	is.Equal(cfg.Display.TickIntervalSec, 60)
	is.Equal(cfg.Display.LanguageTag(), language.Spanish)
}

func TestSaveLoadConfig(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.API.BaseURL = "http://tasks.internal:8080"
	cfg.Session.Backend = SessionBackendKeyring
	cfg.Display.TickIntervalSec = 15
	cfg.Display.Language = "en"
	is.NoErr(SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	is.NoErr(err)
	is.Equal(got.API.BaseURL, "http://tasks.internal:8080")
	is.Equal(got.Session.Backend, SessionBackendKeyring)
	is.Equal(got.Display.TickIntervalSec, 15)
	is.Equal(got.Display.LanguageTag(), language.English)
}

func TestLoadConfig_RejectsBadLanguage(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	is.NoErr(os.WriteFile(path, []byte("display:\n  language: \"not a tag!\"\n"), 0o600))

	_, err := LoadConfig(path)
	is.True(err != nil)
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	is.NoErr(os.WriteFile(path, []byte("session:\n  backend: redis\n"), 0o600))

	_, err := LoadConfig(path)
	is.True(err != nil)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	is := is.New(t)
	t.Setenv("TAREAS_API_BASE_URL", "http://from-env:9999")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	is.NoErr(err)
	is.Equal(cfg.API.BaseURL, "http://from-env:9999")
}
