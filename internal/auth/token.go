package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nfrund/courier/internal/domain"
)

// Claims carries the identity claim inside a signed token, alongside the
// standard registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Verifier resolves an opaque signed token into an identity claim.
type Verifier interface {
	Verify(token string) (domain.Claim, error)
}

// TokenService issues and verifies HS256-signed identity tokens.
type TokenService struct {
	secret   []byte
	validity time.Duration
}

// NewTokenService creates a TokenService signing with the given secret.
// Issued tokens expire after the given validity duration.
func NewTokenService(secret []byte, validity time.Duration) *TokenService {
	return &TokenService{secret: secret, validity: validity}
}

// Issue signs a new token carrying the given identity claim.
func (s *TokenService) Issue(claim domain.Claim) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.validity)),
		},
		UserID:   claim.UserID,
		Username: claim.Username,
	})

	return token.SignedString(s.secret)
}

// Verify validates a token string and returns the identity claim it carries.
// It returns domain.ErrInvalidToken for any token that does not verify,
// including expired ones.
func (s *TokenService) Verify(tokenString string) (domain.Claim, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Claim{}, domain.ErrInvalidToken
	}

	return domain.Claim{UserID: claims.UserID, Username: claims.Username}, nil
}
