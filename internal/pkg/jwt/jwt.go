package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidClaims = errors.New("token is missing required claims")

// Claims are the fields the engine reads from tokens issued by the HR
// application.
type Claims struct {
	UserID string
	Role   string
}

type Service interface {
	JWTAuth() *jwtauth.JWTAuth

	// GenerateAccessToken signs a token with the shared secret. Used by
	// operator tooling and tests; production tokens come from the HR app.
	GenerateAccessToken(userID, role string) (token string, expiresAt int64, err error)

	// ClaimsFromContext reads the claims verified by the jwtauth middleware.
	ClaimsFromContext(ctx context.Context) (Claims, error)
}

type JWTService struct {
	accessTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration) Service {
	if accessTokenTTL <= 0 {
		accessTokenTTL = time.Hour
	}
	return &JWTService{
		accessTokenTTL: accessTokenTTL,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID, role string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenTTL).Unix()
	_, token, err = j.tokenAuth.Encode(map[string]any{
		"user_id": userID,
		"role":    role,
		"type":    "access",
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (j *JWTService) ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}

	if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
		return Claims{}, ErrInvalidClaims
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		// tokens from older HR app builds only carry the standard subject
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return Claims{}, ErrInvalidClaims
	}

	role, _ := claims["role"].(string)
	return Claims{UserID: userID, Role: role}, nil
}
