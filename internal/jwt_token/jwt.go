// Package jwttoken issues and checks the HS256 bearer tokens operators use to
// call the admin API.
package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/requestcontext"
)

// Claims carry the caller principal in the subject.
type Claims struct {
	Env string `json:"env,omitempty"`
	jwt.RegisteredClaims
}

type Config struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
	// Env is copied into issued tokens, e.g. "development".
	Env string
}

type Service struct {
	key    []byte
	cfg    Config
	parser *jwt.Parser
}

func New(cfg Config) *Service {
	return &Service{
		key: []byte(cfg.SigningKey),
		cfg: cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// Issue signs a token for principal, valid from the request time for the
// configured TTL.
func (s *Service) Issue(ctx context.Context, principal id.Principal) (string, error) {
	if principal.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	jti, err := uuid.NewRandom()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "generate token id")
	}

	now := requestcontext.Now(ctx)
	claims := Claims{
		Env: s.cfg.Env,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   principal.String(),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies signature, algorithm, issuer, audience and expiry. Every
// failure is CodeUnauthorized.
func (s *Service) Parse(token string) (*Claims, error) {
	var claims Claims
	_, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
	case err != nil:
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	case claims.Subject == "":
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}
	return &claims, nil
}

// Authenticate returns the principal named by a valid token.
func (s *Service) Authenticate(_ context.Context, token string) (id.Principal, error) {
	claims, err := s.Parse(token)
	if err != nil {
		return "", err
	}
	principal, err := id.ParsePrincipal(claims.Subject)
	if err != nil {
		return "", dErrors.Reclassify(err, dErrors.CodeUnauthorized, "token subject is not a principal")
	}
	return principal, nil
}
