package rest

import (
	"context"
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
)

const identityKey = "identity"

// Authenticator resolves a bearer token to the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
}

// tokenError marks failures coming from Authenticate, as opposed to a
// missing or malformed Authorization header.
type tokenError struct{ err error }

func (e tokenError) Error() string { return e.err.Error() }
func (e tokenError) Unwrap() error { return e.err }

// requireIdentity extracts "Authorization: Bearer <token>" and stores the
// resolved *services.Identity under identityKey.
func requireIdentity(a Authenticator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: identityKey,
		ParseTokenFunc: func(c echo.Context, token string) (any, error) {
			id, err := a.Authenticate(c.Request().Context(), token)
			if err != nil {
				return nil, tokenError{err: err}
			}
			return id, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var te tokenError
			if errors.As(err, &te) {
				return te.err
			}
			return errors.Join(common.ErrorUnauthorized, errors.New("missing or malformed bearer token"))
		},
	})
}

// identity returns the caller stored by requireIdentity.
func identity(c echo.Context) *services.Identity {
	id, _ := c.Get(identityKey).(*services.Identity)
	return id
}
