package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raminkz/gotodo/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrUserNotVerified    = errors.New("user is not verified")
	ErrWrongPassword      = errors.New("wrong password")
)

// Notifier sends templated mail out of band. Delivery is fire-and-forget:
// an enqueue failure is logged by the caller and never surfaced to HTTP.
type Notifier interface {
	SendActivation(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type Service struct {
	db       *gorm.DB
	jwt      *JWTService
	sessions *SessionTokens
	notifier Notifier
	resetTTL time.Duration
	logger   *slog.Logger
}

func NewService(db *gorm.DB, jwt *JWTService, sessions *SessionTokens, notifier Notifier, resetTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		jwt:      jwt,
		sessions: sessions,
		notifier: notifier,
		resetTTL: resetTTL,
		logger:   logger,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type SessionLogin struct {
	Token  string
	UserID uuid.UUID
	Email  string
}

type UpdateProfileInput struct {
	FirstName   string
	LastName    string
	Description string
}

// Register creates an unverified user with its profile in one transaction,
// then mails an activation link carrying an access token.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile := models.Profile{UserID: user.ID}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = &profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendActivation(ctx, &user)

	return &user, nil
}

// LoginSession validates credentials and hands back the opaque token,
// creating it on first login and reusing it afterwards.
func (s *Service) LoginSession(ctx context.Context, email, password string) (*SessionLogin, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &SessionLogin{Token: token.Key, UserID: user.ID, Email: user.Email}, nil
}

// LogoutSession drops the opaque token. JWTs issued earlier stay valid
// until they expire.
func (s *Service) LogoutSession(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.Revoke(ctx, userID)
}

// LoginJWT validates credentials and issues an access/refresh pair.
func (s *Service) LoginJWT(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.jwt.GeneratePair(user.ID, user.Email)
}

func (s *Service) checkCredentials(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	if !user.IsVerified {
		return nil, ErrUserNotVerified
	}

	return &user, nil
}

// ChangePassword re-hashes and persists the new password after checking
// the old one against the stored hash.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !CheckPassword(oldPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	return s.setPassword(ctx, user, newPassword)
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetProfile returns the caller's own profile, creating it lazily for
// accounts that predate the profile table.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.Profile{UserID: userID}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.FirstName = input.FirstName
	profile.LastName = input.LastName
	profile.Description = input.Description
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// ConfirmActivation flips is_verified exactly once. Confirming an already
// verified account reports that without touching state, so replayed links
// are harmless on this axis.
func (s *Service) ConfirmActivation(ctx context.Context, token string) (alreadyVerified bool, err error) {
	userID, err := s.jwt.ValidateActionToken(token)
	if err != nil {
		return false, err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}

	if user.IsVerified {
		return true, nil
	}

	err = s.db.WithContext(ctx).
		Model(user).
		Update("is_verified", true).Error
	return false, err
}

// ResendActivation re-issues the activation mail for a known email.
func (s *Service) ResendActivation(ctx context.Context, email string) error {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	s.sendActivation(ctx, user)
	return nil
}

// RequestPasswordReset mails a one minute action token to a known email.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.jwt.GenerateActionToken(user.ID, s.resetTTL)
	if err != nil {
		return err
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Error("failed to enqueue reset email", "email", user.Email, "error", err)
	}
	return nil
}

// ConfirmPasswordReset verifies the action token and sets the new password.
// The token is not consumed; it stays replayable until its expiry.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	userID, err := s.jwt.ValidateActionToken(token)
	if err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	return s.setPassword(ctx, user, newPassword)
}

func (s *Service) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Model(user).
		Update("password_hash", hash).Error
}

func (s *Service) sendActivation(ctx context.Context, user *models.User) {
	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate activation token", "email", user.Email, "error", err)
		return
	}
	if err := s.notifier.SendActivation(ctx, user.Email, token); err != nil {
		s.logger.Error("failed to enqueue activation email", "email", user.Email, "error", err)
	}
}

// NormalizeEmail lower-cases and trims the login identifier.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
