// Package auth runs the login, registration and logout flows shared by the
// terminal UI and the CLI commands.
package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nhle/tareas/internal/api"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/session"
)

// Gateway is the part of the API client the auth flows need.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)
	Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error)
}

// Messages shown for local validation failures.
const (
	MsgLoginRequired    = "Email and password are required."
	MsgRegisterRequired = "All fields except gender are required."
	MsgBadBirthDate     = "Birth date must be YYYY-MM-DD."
)

// Genders offered by the registration form. The empty value means not
// given.
var Genders = []string{"", "Masculino", "Femenino", "Otro"}

// Service performs auth requests and records the result in the session.
type Service struct {
	gw   Gateway
	sess *session.Store
}

// New creates an auth service.
func New(gw Gateway, sess *session.Store) *Service {
	return &Service{gw: gw, sess: sess}
}

// ValidateLogin trims and checks login input.
func ValidateLogin(email, password string) (string, string, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return "", "", &api.ValidationError{Field: "email", Message: MsgLoginRequired}
	}
	return email, password, nil
}

// ValidateRegistration trims and checks registration input.
func ValidateRegistration(reg model.Registration) (model.Registration, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.BirthDate = strings.TrimSpace(reg.BirthDate)
	reg.Password = strings.TrimSpace(reg.Password)
	reg.Gender = strings.TrimSpace(reg.Gender)

	if reg.Name == "" || reg.Email == "" || reg.BirthDate == "" || reg.Password == "" {
		return reg, &api.ValidationError{Field: "nombre", Message: MsgRegisterRequired}
	}
	if _, err := time.Parse(model.DateLayout, reg.BirthDate); err != nil {
		return reg, &api.ValidationError{Field: "fecha_nacimiento", Message: MsgBadBirthDate}
	}
	return reg, nil
}

// Authenticate sends the login request without touching the session. It
// may run off the event loop; pass the user to Remember afterwards.
func (s *Service) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	email, password, err := ValidateLogin(email, password)
	if err != nil {
		return model.User{}, err
	}

	resp, err := s.gw.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	if err := api.Check(resp.Status, resp.Message); err != nil {
		return model.User{}, err
	}
	if resp.Data == nil {
		// The server accepted the request but sent no user; show its message.
		return model.User{}, &api.StatusError{Status: resp.Status, Message: resp.Message}
	}
	return *resp.Data, nil
}

// Remember stores user as the active session.
func (s *Service) Remember(ctx context.Context, user model.User) error {
	if err := s.sess.SetActiveUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := s.sess.SetUserName(ctx, user.Name); err != nil {
		log.Printf("auth: saving user name: %v", err)
	}
	return nil
}

// Login authenticates and stores the session.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	if err := s.Remember(ctx, user); err != nil {
		return model.User{}, err
	}
	log.Printf("auth: user %d logged in", user.ID)
	return user, nil
}

// Register creates an account. It does not log the user in.
func (s *Service) Register(ctx context.Context, reg model.Registration) error {
	reg, err := ValidateRegistration(reg)
	if err != nil {
		return err
	}

	resp, err := s.gw.Register(ctx, reg)
	if err != nil {
		return err
	}
	return api.Check(resp.Status, resp.Message)
}

// Logout forgets the active user.
func (s *Service) Logout(ctx context.Context) error {
	return s.sess.Clear(ctx)
}
