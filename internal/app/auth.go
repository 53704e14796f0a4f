package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"holidaze/internal/adapters/observability"
	"holidaze/internal/domain"
	"holidaze/internal/forms"
)

type AuthService struct {
	api     domain.ContentAPI
	flights singleflight.Group
}

func NewAuthService(api domain.ContentAPI) *AuthService {
	return &AuthService{api: api}
}

// Login validates the credentials and, only when they pass, authenticates
// against the content API and stores the response body on sess.
// Validation failures come back as field errors; every other failure is
// domain.ErrInvalidLogin.
func (s *AuthService) Login(ctx context.Context, sess domain.Session, c domain.LoginCredentials) (forms.Errors, error) {
	if errs := forms.ValidateLogin(c); errs.Any() {
		observability.ObserveForm("login", "invalid")
		return errs, nil
	}

	// a double-click with the same credentials joins the call already in
	// flight; the call must not die with whichever browser started it
	key := flightKey(sess.ID(), "login", []byte(c.Identifier), []byte(c.Password))
	fctx := context.WithoutCancel(ctx)
	_, err, shared := s.flights.Do(key, func() (any, error) {
		auth, err := s.api.Login(fctx, c)
		if err != nil {
			return nil, err
		}
		return nil, sess.SetAuth(fctx, auth)
	})
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID()).Bool("shared", shared).Msg("login failed")
		observability.ObserveForm("login", "error")
		return nil, domain.ErrInvalidLogin
	}
	observability.ObserveForm("login", "success")
	return nil, nil
}
