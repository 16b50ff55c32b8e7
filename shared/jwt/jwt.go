// Package jwt verifies bearer tokens issued by the external identity provider.
// Tokens are HS256-signed; "sub" carries the external user identity.
package jwt

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
	"github.com/threadly-dev/threadly/shared/logger"
)

type JwtService interface {
	DecodeToken(jwtStr string) (*jwt.Token, error)
	Identity(jwtStr string) (domain.Identity, error)
}

type Jwt struct {
	secretKey string
}

func New(secretKey string) *Jwt {
	return &Jwt{secretKey}
}

// NewToken signs an identity the way the identity provider does.
// Only development tooling and tests mint tokens.
func (j *Jwt) NewToken(identity domain.Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     identity.ExternalId,
		"name":    identity.Name,
		"picture": identity.Image,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("can't sign token: %w", err)
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}

	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	return token, nil
}

func (j *Jwt) Identity(jwtStr string) (domain.Identity, error) {
	token, err := j.DecodeToken(jwtStr)
	if err != nil {
		return domain.Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, errInvalidClaims
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Identity{}, errInvalidClaims
	}

	// name and picture are optional profile hints
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	return domain.Identity{ExternalId: sub, Name: name, Image: picture}, nil
}

var errInvalidClaims = &internal_errors.ErrorWithStatusCode{Message: "Invalid token claims", StatusCode: http.StatusUnauthorized}
