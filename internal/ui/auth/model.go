package auth

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	authflow "github.com/nhle/tareas/internal/auth"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/theme"
)

// LoginSubmitMsg is dispatched when the login form is completed.
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// RegisterSubmitMsg is dispatched when the registration form is completed.
type RegisterSubmitMsg struct {
	Registration model.Registration
}

// QuitMsg is dispatched when the user aborts the login form.
type QuitMsg struct{}

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

// switchKey toggles between login and registration.
const switchKey = "ctrl+n"

type formBindings struct {
	email     string
	password  string
	name      string
	birthDate string
	gender    string
}

// Model is the login / registration screen.
type Model struct {
	mode    authMode
	form    *huh.Form
	fb      *formBindings
	errMsg  string
	infoMsg string
	busy    bool
	width   int
	height  int
}

// New creates the auth screen showing the login form.
func New(width, height int) Model {
	m := Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
	m.form = m.buildLoginForm()
	return m
}

// Init starts the login form.
func (m Model) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

// ShowLogin resets to the login form. info is shown above it, e.g. after
// a successful registration.
func (m *Model) ShowLogin(info string) tea.Cmd {
	m.mode = modeLogin
	m.busy = false
	m.errMsg = ""
	m.infoMsg = info
	m.fb.password = ""
	m.form = m.buildLoginForm()
	return m.form.Init()
}

// ShowRegister switches to the registration form.
func (m *Model) ShowRegister() tea.Cmd {
	m.mode = modeRegister
	m.busy = false
	m.errMsg = ""
	m.infoMsg = ""
	m.fb.password = ""
	m.form = m.buildRegisterForm()
	return m.form.Init()
}

// Fail shows msg and reopens the current form with the values kept.
func (m *Model) Fail(msg string) tea.Cmd {
	m.busy = false
	m.errMsg = msg
	m.infoMsg = ""
	if m.mode == modeRegister {
		m.form = m.buildRegisterForm()
	} else {
		m.form = m.buildLoginForm()
	}
	return m.form.Init()
}

// Update handles messages for the auth screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.busy {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == switchKey {
		if m.mode == modeLogin {
			cmd := m.ShowRegister()
			return m, cmd
		}
		cmd := m.ShowLogin("")
		return m, cmd
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.busy = true
		return m, m.submit()
	case huh.StateAborted:
		if m.mode == modeRegister {
			cmd := m.ShowLogin("")
			return m, cmd
		}
		return m, func() tea.Msg { return QuitMsg{} }
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	fb := *m.fb
	if m.mode == modeRegister {
		reg := model.Registration{
			Email:     fb.email,
			Name:      fb.name,
			BirthDate: fb.birthDate,
			Password:  fb.password,
			Gender:    fb.gender,
		}
		return func() tea.Msg { return RegisterSubmitMsg{Registration: reg} }
	}
	return func() tea.Msg { return LoginSubmitMsg{Email: fb.email, Password: fb.password} }
}

// View renders the auth screen.
func (m Model) View() string {
	title := "Log in"
	hint := switchKey + " create an account | esc quit"
	if m.mode == modeRegister {
		title = "Create account"
		hint = switchKey + " back to log in | esc cancel"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("tareas · " + title))
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}
	if m.infoMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(m.infoMsg))
		b.WriteString("\n\n")
	}
	if m.busy {
		b.WriteString(theme.HelpStyle.Render("Contacting server..."))
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(hint))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(required(authflow.MsgLoginRequired)),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(required(authflow.MsgLoginRequired)),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m *Model) buildRegisterForm() *huh.Form {
	genders := make([]huh.Option[string], len(authflow.Genders))
	for i, g := range authflow.Genders {
		label := g
		if g == "" {
			label = "Prefer not to say"
		}
		genders[i] = huh.NewOption(label, g)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(required(authflow.MsgRegisterRequired)),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(required(authflow.MsgRegisterRequired)),
			huh.NewInput().
				Title("Birth date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.birthDate).
				Validate(validateDate),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(required(authflow.MsgRegisterRequired)),
			huh.NewSelect[string]().
				Title("Gender").
				Options(genders...).
				Value(&m.fb.gender),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func required(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s", msg)
		}
		return nil
	}
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%s", authflow.MsgRegisterRequired)
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return fmt.Errorf("%s", authflow.MsgBadBirthDate)
	}
	return nil
}
