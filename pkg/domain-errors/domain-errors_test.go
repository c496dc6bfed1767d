package domainerrors

import (
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

func (s *DomainErrorsSuite) TestErrorText() {
	s.Equal("issuance not initialized", New(CodeNotInitialized, "issuance not initialized").Error())
	s.Equal("not_initialized", (&Error{Code: CodeNotInitialized}).Error())
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	stored := New(CodeNotFound, "token 7 not found")

	s.True(errors.Is(stored, &Error{Code: CodeNotFound}))
	s.False(errors.Is(stored, &Error{Code: CodeConflict}))
	s.False(errors.Is(stored, errors.New("token 7 not found")))

	s.Run("inner code is found through a reclassified chain", func() {
		outer := Reclassify(stored, CodeIssuanceFailed, "mint failed")
		s.True(errors.Is(outer, &Error{Code: CodeNotFound}))
		s.True(errors.Is(outer, &Error{Code: CodeIssuanceFailed}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps an existing code", func() {
		err := Wrap(New(CodeAlreadyInitialized, "settings already set"), CodeInternal, "initialize issuance")
		s.Equal(CodeAlreadyInitialized, CodeOf(err))
		s.Equal("initialize issuance", err.Error())
	})

	s.Run("applies code to foreign errors", func() {
		root := errors.New("connection refused")
		err := Wrap(root, CodeInternal, "load settings")
		s.Equal(CodeInternal, CodeOf(err))
		s.ErrorIs(err, root)
	})

	s.Run("sees codes behind fmt wrapping", func() {
		err := Wrap(fmt.Errorf("store: %w", New(CodeConflict, "token exists")), CodeInternal, "mint")
		s.Equal(CodeConflict, CodeOf(err))
	})
}

func (s *DomainErrorsSuite) TestReclassify() {
	inner := New(CodeNotInitialized, "registry not initialized")
	err := Reclassify(inner, CodeIssuanceFailed, "mint failed")

	s.True(HasCode(err, CodeIssuanceFailed))
	s.False(HasCode(err, CodeNotInitialized), "only the outermost code counts")
	s.ErrorIs(err, inner)

	var unwrapped *Error
	s.Require().ErrorAs(errors.Unwrap(err), &unwrapped)
	s.Equal(CodeNotInitialized, unwrapped.Code)
}

func (s *DomainErrorsSuite) TestHasCodeAndCodeOf() {
	cases := []struct {
		name string
		err  error
		code Code
	}{
		{"nil", nil, CodeInternal},
		{"plain error", errors.New("boom"), CodeInternal},
		{"domain error", New(CodeVerificationFailed, "proof rejected"), CodeVerificationFailed},
		{"fmt wrapped", fmt.Errorf("ctx: %w", New(CodeTimeout, "slow")), CodeTimeout},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.code, CodeOf(tc.err))
			s.Equal(tc.err != nil && tc.code != CodeInternal, HasCode(tc.err, tc.code))
		})
	}
}
