package domainerrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestMessage() {
	s.Equal("no backup-id committed", New(CodeNotFound, "no backup-id committed").Error())
	s.Equal("not_found", (&Error{Code: CodeNotFound}).Error())
	s.Equal("window spans 9 days, max 8", Newf(CodeBadRequest, "window spans %d days, max %d", 9, 8).Error())
}

func (s *DomainErrorsSuite) TestIsComparesCodes() {
	forbidden := &Error{Code: CodeForbidden}

	s.ErrorIs(New(CodeForbidden, "account not enrolled"), forbidden)
	s.NotErrorIs(New(CodeNotFound, "account not enrolled"), forbidden)
	s.NotErrorIs(errors.New("forbidden"), forbidden)

	// errors.Is walks to an inner code even when the outer one differs.
	outer := &Error{Code: CodeInternal, Err: New(CodeForbidden, "inner")}
	s.ErrorIs(outer, forbidden)
}

func (s *DomainErrorsSuite) TestCodeResolution() {
	ledgerDown := errors.New("redis: connection refused")

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"plain error", ledgerDown, CodeInternal},
		{"wrap keeps inner code", Wrap(New(CodeConflict, "serial already redeemed"), CodeInternal, "redeem"), CodeConflict},
		{"wrap supplies code for plain error", Wrap(ledgerDown, CodeUnauthorized, "verify"), CodeUnauthorized},
		{"fmt wrap is transparent", fmt.Errorf("commit: %w", New(CodeForbidden, "not enrolled")), CodeForbidden},
		{"bare deadline", context.DeadlineExceeded, CodeTimeout},
		{"wrapped deadline", fmt.Errorf("load account: %w", context.DeadlineExceeded), CodeTimeout},
		{"deadline beats wrap code", Wrap(context.DeadlineExceeded, CodeConflict, "cas"), CodeTimeout},
		{"cancellation is not a timeout", context.Canceled, CodeInternal},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, CodeOf(tt.err))
		})
	}
}

func (s *DomainErrorsSuite) TestWrapKeepsChain() {
	root := errors.New("root cause")
	wrapped := Wrap(root, CodeInternal, "store failed")

	s.ErrorIs(wrapped, root)
	s.Equal(root, errors.Unwrap(wrapped))
	s.Equal("store failed", wrapped.Error())
	s.ErrorIs(Wrap(fmt.Errorf("x: %w", context.DeadlineExceeded), CodeInternal, "load"), context.DeadlineExceeded)
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("not_found"), CodeNotFound))
	s.True(HasCode(Wrap(New(CodeNotFound, "no account"), CodeInternal, "outer"), CodeNotFound))
	s.False(HasCode(New(CodeNotFound, "no account"), CodeInternal))
}
