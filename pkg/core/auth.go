package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/mdninja/pkg/validate"
)

type credentials struct {
	Domain   string `json:"domain"`
	Password string `json:"password"`
}

type checkResponse struct {
	Response
	User *User `json:"user"`
}

// Login authenticates with the backend. On an "ok" result the session is
// refreshed with CheckAuth, whose outcome is returned.
func (s *Service) Login(ctx context.Context, domain, password string) (bool, error) {
	var resp Response
	if err := s.Request(ctx, PathLogin, credentials{Domain: domain, Password: password}, &resp); err != nil {
		return false, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if resp.Result != ResultOK {
		return false, ErrLoginFailed
	}
	return s.CheckAuth(ctx), nil
}

// Logout ends the session. A failing logout request is not reported: the
// session is re-checked against the server either way.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.Request(ctx, PathLogout, nil, nil); err != nil {
		if errors.Is(err, ErrClosed) {
			return err
		}
		s.logger.Debug("logout request failed", "error", err)
	}
	s.CheckAuth(ctx)
	return nil
}

// CheckAuth asks the server whether the session is valid. Any failure
// leaves the service unauthenticated and yields false. A closed service
// reports its last state and changes nothing.
func (s *Service) CheckAuth(ctx context.Context) bool {
	if s.usable() != nil {
		return s.Authenticated()
	}
	var resp checkResponse
	if err := s.Request(ctx, PathCheck, nil, &resp); err != nil {
		s.logger.Debug("auth check failed", "error", err)
		s.setSession(false, nil)
		return false
	}
	s.setSession(true, resp.User)
	return true
}

// Signup validates the form, creates the account and refreshes the
// session, since the backend signs the new account in.
func (s *Service) Signup(ctx context.Context, params SignupParams) (Response, error) {
	if err := validate.Signup(params.Name, params.Domain, params.Email, params.Password); err != nil {
		return Response{}, err
	}

	var resp Response
	if err := s.Request(ctx, PathSignup, params, &resp); err != nil {
		return resp, err
	}
	if !resp.Error {
		s.CheckAuth(ctx)
	}
	return resp, nil
}

// CheckDomain reports whether domain is still available.
func (s *Service) CheckDomain(ctx context.Context, domain string) (bool, error) {
	if err := validate.Domain(domain); err != nil {
		return false, err
	}

	var resp Response
	if err := s.Request(ctx, PathCheckDomain, nameDomain{Domain: domain}, &resp); err != nil {
		return false, err
	}
	return resp.Result == ResultDomainAvailable, nil
}

type nameDomain struct {
	Domain string `json:"domain"`
}
