package core

import (
	"context"
	"errors"

	"github.com/aretw0/mdninja/pkg/validate"
)

// UpdateEmail changes the account email. Blank clears it.
func (s *Service) UpdateEmail(ctx context.Context, email string) error {
	if err := validate.Email(email); err != nil {
		return err
	}
	var resp Response
	if err := s.Request(ctx, PathUpdateEmail, struct {
		Email string `json:"email"`
	}{email}, &resp); err != nil {
		return err
	}
	if resp.Error {
		return &ValidationError{Field: "email", Message: validate.MsgEmailInvalid}
	}
	s.refreshUser(func(u *User) { u.Email = email })
	return nil
}

// UpdatePassword sets a new password after checking the confirmation.
func (s *Service) UpdatePassword(ctx context.Context, password, confirm string) error {
	if err := validate.Password(password, confirm); err != nil {
		return err
	}
	var resp Response
	if err := s.Request(ctx, PathUpdatePass, struct {
		Password string `json:"password"`
	}{password}, &resp); err != nil {
		return err
	}
	if resp.Error {
		return ErrUnknownResult
	}
	return nil
}

// UpdateCustomDomain points a domain the user owns at their site.
// A domain already claimed by someone else yields ErrDomainTaken.
func (s *Service) UpdateCustomDomain(ctx context.Context, domain string) error {
	var resp Response
	err := s.Request(ctx, PathCustomDomain, struct {
		Domain string `json:"domain"`
	}{domain}, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Response.Result == ResultDuplicate {
		return ErrDomainTaken
	}
	if err != nil {
		return err
	}
	switch {
	case resp.Result == ResultDuplicate:
		return ErrDomainTaken
	case resp.Error:
		return &ValidationError{Field: "domain", Message: validate.MsgDomainInvalid}
	}
	s.refreshUser(func(u *User) { u.ExternalDomain = domain })
	return nil
}

// refreshUser applies a local edit to the cached user and announces it.
func (s *Service) refreshUser(edit func(u *User)) {
	s.mu.RLock()
	authenticated, current := s.authenticated, s.user
	s.mu.RUnlock()
	if current == nil {
		return
	}
	u := *current
	edit(&u)
	s.setSession(authenticated, &u)
}
