// Package cli holds the tareas command tree. With no subcommand the root
// command starts the terminal UI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/tareas/internal/api"
	"github.com/nhle/tareas/internal/app"
	"github.com/nhle/tareas/internal/credential"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/session"
	"github.com/nhle/tareas/internal/store"
	"github.com/nhle/tareas/internal/tasks"
)

// errNotLoggedIn is returned by commands that need a stored session.
var errNotLoggedIn = errors.New("not logged in; run `tareas login` first")

// App carries what every command needs. Fields left nil are built from
// the configuration on first use.
type App struct {
	ConfigPath string

	cfg     *model.AppConfig
	gateway app.Gateway
	kv      store.KV
	sess    *session.Store
	closers []io.Closer
	now     func() time.Time
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(a *App) *cobra.Command {
	if a.now == nil {
		a.now = time.Now
	}

	cmd := &cobra.Command{
		Use:          "tareas",
		Short:        "Terminal client for the tareas task server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive UI
  tareas

  # Scriptable commands
  tareas login --email ana@example.com
  tareas list --priority alta --sort titulo
  tareas add "Comprar pan" --priority baja --group Casa
  tareas export --format pdf -o tareas.pdf
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return a.runTUI(cmd.Context())
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.close()
	}

	defaultConfig := a.ConfigPath
	if defaultConfig == "" {
		defaultConfig = model.DefaultConfigPath()
	}
	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", defaultConfig, "Path to the YAML config file")

	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newRegisterCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newAddCmd(a))
	cmd.AddCommand(newEditCmd(a))
	cmd.AddCommand(newDoneCmd(a))
	cmd.AddCommand(newFavCmd(a))
	cmd.AddCommand(newThemeCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// config loads the configuration once.
func (a *App) config() (*model.AppConfig, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := model.LoadConfig(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// client returns the API gateway.
func (a *App) client() (app.Gateway, error) {
	if a.gateway != nil {
		return a.gateway, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	a.gateway = api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second),
	)
	return a.gateway, nil
}

// session opens the configured session backend.
func (a *App) session() (*session.Store, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	if a.kv == nil {
		cfg, err := a.config()
		if err != nil {
			return nil, err
		}
		kv, err := openKV(cfg.Session)
		if err != nil {
			return nil, err
		}
		a.kv = kv
		if c, ok := kv.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
	}
	a.sess = session.New(a.kv)
	return a.sess, nil
}

func openKV(cfg model.SessionConfig) (store.KV, error) {
	switch cfg.Backend {
	case model.SessionBackendKeyring:
		return credential.Open()
	default:
		s, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		return s, nil
	}
}

// viewModel returns a view-model loaded with the active user's tasks.
func (a *App) viewModel(ctx context.Context) (*tasks.ViewModel, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	gw, err := a.client()
	if err != nil {
		return nil, err
	}
	sess, err := a.session()
	if err != nil {
		return nil, err
	}
	uid, ok := sess.ActiveUserID(ctx)
	if !ok {
		return nil, errNotLoggedIn
	}

	vm := tasks.New(gw, sess)
	vm.SetLanguage(cfg.Display.LanguageTag())
	if err := vm.Load(ctx, uid); err != nil {
		return nil, requestError(err)
	}
	return vm, nil
}

func (a *App) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}
	gw, err := a.client()
	if err != nil {
		return err
	}
	sess, err := a.session()
	if err != nil {
		return err
	}

	// Diagnostics go to a file while the TUI owns the terminal.
	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "tareas")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	}

	m := app.New(ctx, gw, sess,
		app.WithTickInterval(time.Duration(cfg.Display.TickIntervalSec)*time.Second),
		app.WithLanguage(cfg.Display.LanguageTag()),
	)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	log.Printf("tareas: TUI closed")
	return nil
}

// requestError turns a gateway failure into the message a user should
// see, keeping the cause for errors.Is.
func requestError(err error) error {
	if err == nil {
		return nil
	}
	return &userError{msg: api.UserMessage(err), err: err}
}

type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }
