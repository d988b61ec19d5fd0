package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Identity carries the claims the identity provider asserts about a caller.
type Identity struct {
	ExternalID string
	Name       string
	Email      string
	AvatarURL  string
}

// TokenValidator validates identity-provider tokens presented by clients.
type TokenValidator interface {
	Validate(token string) (*Identity, error)
}

type hmacTokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator creates a validator for HS256 tokens signed with the shared secret.
func NewTokenValidator(secret, issuer string) TokenValidator {
	return &hmacTokenValidator{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (v *hmacTokenValidator) Validate(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	identity := &Identity{ExternalID: sub}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if avatar, ok := claims["picture"].(string); ok {
		identity.AvatarURL = avatar
	}

	return identity, nil
}
