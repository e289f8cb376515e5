package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dthai91/edx-platform/internal/blocks"
	"github.com/dthai91/edx-platform/internal/platform/logger"
)

// AuthService is the session-layer boundary: it turns a bearer token into
// the requesting viewer identity. Token issuance lives here too so dev
// tooling and tests can mint sessions.
type AuthService interface {
	IssueToken(userID uuid.UUID, username string, ttl time.Duration) (string, error)
	ViewerFromToken(tokenString string) (blocks.Viewer, error)
}

type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type authService struct {
	log       *logger.Logger
	secretKey string
}

func NewAuthService(baseLog *logger.Logger, secretKey string) AuthService {
	return &authService{
		log:       baseLog.With("service", "AuthService"),
		secretKey: secretKey,
	}
}

func (as *authService) IssueToken(userID uuid.UUID, username string, ttl time.Duration) (string, error) {
	claims := JWTClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.secretKey))
}

func (as *authService) ViewerFromToken(tokenString string) (blocks.Viewer, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.secretKey), nil
	})
	if err != nil {
		return blocks.Viewer{}, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return blocks.Viewer{}, fmt.Errorf("invalid token claims")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return blocks.Viewer{}, fmt.Errorf("invalid subject: %w", err)
	}
	return blocks.Viewer{ID: userID, Username: claims.Username}, nil
}
