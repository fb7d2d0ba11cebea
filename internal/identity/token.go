package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// ParseToken decodes a bearer token into an actor. Claims: sub (actor id),
// email, role. Actors without a role claim default to owner.
func ParseToken(secret, tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Actor{}, ErrInvalidToken
	}

	actor := Actor{ID: sub, Role: RoleOwner}
	if email, ok := claims["email"].(string); ok {
		actor.Email = email
	}
	if role, ok := claims["role"].(string); ok && role != "" {
		actor.Role = Role(role)
	}

	return actor, nil
}

// SignToken mints a token for an actor. Used by the CLI login helper and tests.
func SignToken(secret string, actor Actor) (string, error) {
	claims := jwt.MapClaims{
		"sub":   actor.ID,
		"email": actor.Email,
		"role":  string(actor.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
