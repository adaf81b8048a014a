package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	authflow "github.com/nhle/tareas/internal/auth"
	"github.com/nhle/tareas/internal/model"
)

// promptSecret asks for a hidden value when it was not given as a flag.
var promptSecret = func(title string, value *string) error {
	return huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(value).
		Run()
}

func (a *App) authService() (*authflow.Service, error) {
	gw, err := a.client()
	if err != nil {
		return nil, err
	}
	sess, err := a.session()
	if err != nil {
		return nil, err
	}
	return authflow.New(gw, sess), nil
}

func newLoginCmd(a *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the user on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.authService()
			if err != nil {
				return err
			}
			if strings.TrimSpace(password) == "" {
				if err := promptSecret("Password", &password); err != nil {
					return err
				}
			}

			user, err := svc.Login(cmd.Context(), email, password)
			if err != nil {
				return requestError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (id %d).\n", user.Name, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(a *App) *cobra.Command {
	var reg model.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.authService()
			if err != nil {
				return err
			}
			if strings.TrimSpace(reg.Password) == "" {
				if err := promptSecret("Password", &reg.Password); err != nil {
					return err
				}
			}

			if err := svc.Register(cmd.Context(), reg); err != nil {
				return requestError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run `tareas login` to continue.")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&reg.Name, "name", "", "Full name")
	f.StringVar(&reg.Email, "email", "", "Account email")
	f.StringVar(&reg.BirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	f.StringVar(&reg.Gender, "gender", "", "Masculino, Femenino or Otro (optional)")
	f.StringVar(&reg.Password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.authService()
			if err != nil {
				return err
			}
			if err := svc.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
