package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/nhle/tareas/internal/api"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/session"
	"github.com/nhle/tareas/internal/testutil"
)

func newService(t *testing.T) (*Service, *testutil.FakeGateway, *session.Store) {
	t.Helper()
	gw := testutil.NewFakeGateway()
	sess := session.New(testutil.NewTestStore(t))
	return New(gw, sess), gw, sess
}

func TestLogin(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	svc, gw, sess := newService(t)
	gw.AddUser(7, "ana@example.com", "Ana", "secreto")

	user, err := svc.Login(ctx, " ana@example.com ", "secreto")
	is.NoErr(err)
	is.Equal(user, model.User{ID: 7, Name: "Ana"})

	id, ok := sess.ActiveUserID(ctx)
	is.True(ok)
	is.Equal(id, 7)
	is.Equal(sess.UserName(ctx), "Ana")

	is.NoErr(svc.Logout(ctx))
	_, ok = sess.ActiveUserID(ctx)
	is.True(!ok)
}

func TestLogin_Failures(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	svc, gw, sess := newService(t)
	gw.AddUser(7, "ana@example.com", "Ana", "secreto")

	_, err := svc.Login(ctx, "ana@example.com", "  ")
	is.True(api.IsValidation(err))
	is.Equal(api.UserMessage(err), MsgLoginRequired)
	is.Equal(gw.LoginCalls, 0) // nothing sent

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	is.True(api.IsStatus(err))
	is.Equal(api.UserMessage(err), "Credenciales incorrectas")

	gw.LoginErr = &api.TransportError{Method: "POST", Path: "/login", Err: errors.New("timeout")}
	_, err = svc.Login(ctx, "ana@example.com", "secreto")
	is.Equal(api.UserMessage(err), api.GenericFailureMessage)

	gw.LoginErr = nil
	gw.LoginNullData = true
	gw.LoginMessage = "Usuario no encontrado"
	_, err = svc.Login(ctx, "ana@example.com", "secreto")
	is.True(api.IsStatus(err))
	is.Equal(api.UserMessage(err), "Usuario no encontrado")

	_, ok := sess.ActiveUserID(ctx)
	is.True(!ok) // failed logins leave no session
}

func TestRegister(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	svc, _, sess := newService(t)

	reg := model.Registration{
		Name:      "Luis",
		Email:     "luis@example.com",
		BirthDate: "1990-04-12",
		Password:  "clave",
	}
	is.NoErr(svc.Register(ctx, reg))

	_, ok := sess.ActiveUserID(ctx)
	is.True(!ok) // registering does not log in

	err := svc.Register(ctx, reg)
	is.True(api.IsStatus(err))

	_, err = svc.Login(ctx, "luis@example.com", "clave")
	is.NoErr(err)
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name string
		reg  model.Registration
		want string
	}{
		{name: "missing name", reg: model.Registration{Email: "a@b.c", BirthDate: "2000-01-01", Password: "x"}, want: MsgRegisterRequired},
		{name: "missing date", reg: model.Registration{Name: "A", Email: "a@b.c", Password: "x"}, want: MsgRegisterRequired},
		{name: "bad date", reg: model.Registration{Name: "A", Email: "a@b.c", BirthDate: "01/02/2000", Password: "x"}, want: MsgBadBirthDate},
		{name: "gender optional", reg: model.Registration{Name: "A", Email: "a@b.c", BirthDate: "2000-01-01", Password: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			_, err := ValidateRegistration(tt.reg)
			if tt.want == "" {
				is.NoErr(err)
				return
			}
			is.Equal(api.UserMessage(err), tt.want)
		})
	}
}
