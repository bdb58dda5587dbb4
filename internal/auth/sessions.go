package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/raminkz/gotodo/internal/database/models"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session token not found")

// SessionTokens manages the opaque store-backed credentials. A user has at
// most one row; GetOrCreate is idempotent so repeated logins hand back the
// same key.
type SessionTokens struct {
	db *gorm.DB
}

func NewSessionTokens(db *gorm.DB) *SessionTokens {
	return &SessionTokens{db: db}
}

// GetOrCreate returns the user's existing token or mints a new one. The
// unique index on user_id arbitrates concurrent logins: the loser of an
// insert race re-reads the winner's row, so a user never ends up with two.
func (s *SessionTokens) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.SessionToken, error) {
	var token models.SessionToken
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	key, err := generateKey()
	if err != nil {
		return nil, err
	}
	token = models.SessionToken{UserID: userID, Key: key}
	if err := s.db.WithContext(ctx).Create(&token).Error; err != nil {
		// Lost the race to a concurrent login; hand back the winner's row.
		var existing models.SessionToken
		if lookupErr := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("get or create session token: %w", err)
	}
	return &token, nil
}

// Lookup resolves a presented key to its row, preloading the user.
func (s *SessionTokens) Lookup(ctx context.Context, key string) (*models.SessionToken, error) {
	var token models.SessionToken
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("key = ?", key).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &token, nil
}

// Revoke deletes the user's token. Subsequent lookups fail; issued JWTs are
// unaffected.
func (s *SessionTokens) Revoke(ctx context.Context, userID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.SessionToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func generateKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
