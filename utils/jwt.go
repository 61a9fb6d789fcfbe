package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/statshare/statshare/config"
)

// Token subject types.
const (
	TokenTypeAdmin   = "admin"
	TokenTypeProject = "project"
)

// Claims defines JWT claims used in the application. Admin tokens carry the
// username; project tokens carry the project ID they grant access to.
type Claims struct {
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateAdminToken issues a JWT for the admin identity.
func GenerateAdminToken(username string, duration time.Duration) (string, error) {
	return signToken(Claims{
		Type:     TokenTypeAdmin,
		Username: username,
	}, duration)
}

// GenerateProjectToken issues a session JWT granting access to one project.
func GenerateProjectToken(projectID string, duration time.Duration) (string, error) {
	return signToken(Claims{
		Type:      TokenTypeProject,
		ProjectID: projectID,
	}, duration)
}

func signToken(claims Claims, duration time.Duration) (string, error) {
	cfg := config.Get()
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
