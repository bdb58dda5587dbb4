package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/raminkz/gotodo/internal/api/dto"
	"github.com/raminkz/gotodo/internal/api/middleware"
	"github.com/raminkz/gotodo/internal/auth"
)

type AuthHandler struct {
	authService *auth.Service
	jwtService  *auth.JWTService
}

func NewAuthHandler(authService *auth.Service, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{authService: authService, jwtService: jwtService}
}

// Register handles POST /api/v1/registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	user, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Detail: "Validation failed",
				Errors: map[string]string{"email": "user with this email already exists"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Registration failed"})
		return
	}

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{Email: user.Email})
}

// SessionLogin handles POST /api/v1/token/login. Every credential failure
// maps to the same 400 so the response does not leak which part was wrong.
func (h *AuthHandler) SessionLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	login, err := h.authService.LoginSession(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials),
			errors.Is(err, auth.ErrInactiveUser),
			errors.Is(err, auth.ErrUserNotVerified):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Detail: "Unable to log in with provided credentials.",
			})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Login failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionLoginResponse{
		Token:  login.Token,
		UserID: login.UserID.String(),
		Email:  login.Email,
	})
}

// SessionLogout handles POST /api/v1/token/logout
func (h *AuthHandler) SessionLogout(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	if err := h.authService.LogoutSession(r.Context(), principal.UserID); err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Detail: "Invalid token."})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Logout failed"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// JWTCreate handles POST /api/v1/jwt/create. Unlike the session login this
// returns 401 for bad credentials; unverified accounts stay 400.
func (h *AuthHandler) JWTCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	pair, err := h.authService.LoginJWT(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
				Detail: "No active account found with the given credentials",
			})
		case errors.Is(err, auth.ErrUserNotVerified), errors.Is(err, auth.ErrInactiveUser):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "user is not verified"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Login failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.JWTPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// JWTRefresh handles POST /api/v1/jwt/refresh
func (h *AuthHandler) JWTRefresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	access, err := h.jwtService.Refresh(req.Refresh)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Detail: "Token is invalid or expired",
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.RefreshResponse{Access: access})
}

// JWTVerify handles POST /api/v1/jwt/verify. Both access and refresh
// tokens verify; only signature and expiry are checked.
func (h *AuthHandler) JWTVerify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	if _, err := h.jwtService.ValidateToken(req.Token); err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Detail: "Token is invalid or expired",
		})
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

// ChangePassword handles PUT /api/v1/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	err := h.authService.ChangePassword(r.Context(), principal.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Detail: "Validation failed",
				Errors: map[string]string{"old_password": "Wrong password."},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Password change failed"})
		return
	}

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "password changed successfully"})
}

// GetProfile handles GET /api/v1/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	profile, err := h.authService.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Failed to load profile"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ProfileResponse{
		ID:          profile.ID.String(),
		Email:       principal.Email,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Description: profile.Description,
	})
}

// UpdateProfile handles PUT /api/v1/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	profile, err := h.authService.UpdateProfile(r.Context(), principal.UserID, auth.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Description: req.Description,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Failed to update profile"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ProfileResponse{
		ID:          profile.ID.String(),
		Email:       principal.Email,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Description: profile.Description,
	})
}

// ActivationConfirm handles GET /api/v1/activation/confirm/{token}
func (h *AuthHandler) ActivationConfirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	alreadyVerified, err := h.authService.ConfirmActivation(r.Context(), token)
	if err != nil {
		writeTokenError(w, err)
		return
	}

	if alreadyVerified {
		writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "your account has already been verified"})
		return
	}

	writeJSON(w, http.StatusOK, dto.DetailResponse{
		Detail: "your account has been verified and activated successfully",
	})
}

// ActivationResend handles POST /api/v1/activation/resend
func (h *AuthHandler) ActivationResend(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendActivationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	if err := h.authService.ResendActivation(r.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Detail: "Validation failed",
				Errors: map[string]string{"email": "user with this email does not exist"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Resend failed"})
		return
	}

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "user activation resend successfully"})
}

// ResetPassword handles POST /api/v1/reset-password. The route is wrapped
// in RequireAnonymous; a logged-in caller never reaches this handler.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Detail: "Validation failed",
				Errors: map[string]string{"email": "user with this email does not exist"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Reset request failed"})
		return
	}

	writeJSON(w, http.StatusOK, dto.DetailResponse{
		Detail: "you can reset your password via the link which sent to your email",
	})
}

// ResetPasswordConfirm handles PUT /api/v1/reset-password/{token}
func (h *AuthHandler) ResetPasswordConfirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req dto.ResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	if err := h.authService.ConfirmPasswordReset(r.Context(), token, req.NewPassword); err != nil {
		writeTokenError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "password changed successfully"})
}

// writeTokenError maps action-token failures: expiry and signature both
// surface as 400, a vanished user behind a valid token as 404.
func writeTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "token has been expired"})
	case errors.Is(err, auth.ErrInvalidToken):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "token is not valid"})
	case errors.Is(err, auth.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Detail: "user not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Operation failed"})
	}
}
