package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

func (a *App) Register(ctx context.Context, _ []string) error {
	var (
		in  api.RegisterRequest
		err error
	)
	if in.FirstName, err = GetSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if in.LastName, err = GetSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if in.Email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if in.Password, err = GetPassword(a.out, "Password"); err != nil {
		return err
	}
	confirm, err := GetPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	if confirm != in.Password {
		return errors.New("passwords do not match")
	}

	s, err := a.api.Register(ctx, in)
	if err != nil {
		return err
	}
	a.startSession(s)
	printOK(a.out, "Welcome, %s!", s.User.FirstName)
	return nil
}

func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}

	s, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.startSession(s)
	printOK(a.out, "Logged in as %s", s.User.Email)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	err := a.api.Logout(ctx, a.token)
	a.endSession()
	if err != nil && !errors.Is(err, common.ErrorUnauthorized) {
		return err
	}
	printOK(a.out, "Logged out")
	return nil
}

func (a *App) startSession(s *api.Session) {
	a.token = s.Token
	a.user = s.User
	if a.user == nil {
		a.user = &api.Owner{}
	}
}

func (a *App) endSession() {
	a.token = ""
	a.user = nil
}

// checkSession drops the local session once the server rejects the token.
func (a *App) checkSession(err error) error {
	if errors.Is(err, common.ErrorUnauthorized) {
		a.endSession()
		return errors.New("session expired, please log in again")
	}
	return err
}
