package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/raminkz/gotodo/internal/database/models"
)

// Authenticator defines the interface for the authentication gateway.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	LoginSession(ctx context.Context, email, password string) (*SessionLogin, error)
	LogoutSession(ctx context.Context, userID uuid.UUID) error
	LoginJWT(ctx context.Context, email, password string) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	ConfirmActivation(ctx context.Context, token string) (bool, error)
	ResendActivation(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// TokenService defines the interface for signed-token operations.
type TokenService interface {
	GeneratePair(userID uuid.UUID, email string) (*TokenPair, error)
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	Refresh(refreshToken string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	GenerateActionToken(userID uuid.UUID, ttl time.Duration) (string, error)
	ValidateActionToken(tokenString string) (uuid.UUID, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
