package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrAuthentication refuses admission at connection time. Unlike the
// operation-level errors it is fatal to the connection attempt.
var ErrAuthentication = errors.New("authentication failed")

// AuthService validates bearer credentials presented in the connection
// handshake. Token minting belongs to the external login service; this side
// only verifies and resolves the subject against the user store.
type AuthService struct {
	Users  UserStore
	Secret []byte
	Issuer string
}

// VerifyBearer checks the Authorization header value and resolves it to the
// connecting user's identity. The subject must still exist in the Users
// table; deleted accounts are refused even with a valid signature.
func (s *AuthService) VerifyBearer(ctx context.Context, header string) (*models.Identity, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "Bearer"))
	if raw == "" {
		return nil, fmt.Errorf("missing bearer token: %w", ErrAuthentication)
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", ErrAuthentication)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims: %w", ErrAuthentication)
	}

	record, err := s.Users.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s no longer exists: %w", claims.Subject, ErrAuthentication)
		}
		return nil, err
	}

	return &models.Identity{
		UserID:   record.UserID,
		Username: record.Username,
		Tag:      record.Tag,
		Avatar:   record.Avatar,
	}, nil
}
