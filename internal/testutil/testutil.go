package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/raminkz/gotodo/internal/auth"
	"github.com/raminkz/gotodo/internal/database/models"
	"github.com/raminkz/gotodo/internal/todo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.SessionToken{},
		&models.Task{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// RecordingNotifier captures outbound mail instead of sending it. Tests
// read the captured tokens to drive activation and reset confirmations.
type RecordingNotifier struct {
	mu               sync.Mutex
	ActivationTokens map[string]string // email -> token
	ResetTokens      map[string]string // email -> token
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{
		ActivationTokens: make(map[string]string),
		ResetTokens:      make(map[string]string),
	}
}

func (n *RecordingNotifier) SendActivation(ctx context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ActivationTokens[email] = token
	return nil
}

func (n *RecordingNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ResetTokens[email] = token
	return nil
}

var _ auth.Notifier = (*RecordingNotifier)(nil)

// TestContext bundles the services a handler test needs.
type TestContext struct {
	DB          *gorm.DB
	JWTService  *auth.JWTService
	Sessions    *auth.SessionTokens
	AuthService *auth.Service
	TaskStore   *todo.Store
	Notifier    *RecordingNotifier
}

func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	sessions := auth.NewSessionTokens(db)
	notifier := NewRecordingNotifier()
	authService := auth.NewService(db, jwtService, sessions, notifier, time.Minute, nil)

	return &TestContext{
		DB:          db,
		JWTService:  jwtService,
		Sessions:    sessions,
		AuthService: authService,
		TaskStore:   todo.NewStore(db),
		Notifier:    notifier,
	}
}

func (tc *TestContext) Cleanup() {
	sqlDB, err := tc.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}

// CreateTestUser creates a verified user with the given email.
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return createUser(t, db, email, true)
}

// CreateUnverifiedUser creates a user that has not confirmed activation.
func CreateUnverifiedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return createUser(t, db, email, false)
}

func createUser(t *testing.T, db *gorm.DB, email string, verified bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   verified,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	profile := &models.Profile{
		Base:      models.Base{ID: uuid.New()},
		UserID:    user.ID,
		FirstName: "Test",
		LastName:  "User",
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	user.Profile = profile

	return user
}

// TestPassword is the plaintext behind every fixture user's hash.
const TestPassword = "testpassword123"

// CreateTestTask creates a task owned by the given user's profile.
func CreateTestTask(t *testing.T, db *gorm.DB, owner *models.User, title string) *models.Task {
	t.Helper()

	if owner.Profile == nil {
		t.Fatal("test user has no profile")
	}

	task := &models.Task{
		Base:      models.Base{ID: uuid.New()},
		ProfileID: owner.Profile.ID,
		Title:     title,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 5*time.Minute, 24*time.Hour)
}

// AccessToken generates a valid access token for the given user.
func AccessToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// AuthenticatedRequest creates an HTTP request with a bearer access token.
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}
