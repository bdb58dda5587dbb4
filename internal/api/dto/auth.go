package dto

import "github.com/raminkz/gotodo/internal/api/validation"

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Enter a valid email address"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if r.PasswordConfirm != r.Password {
		errors["password_confirm"] = "Passwords do not match"
	}

	return errors
}

type RegisterResponse struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

// SessionLoginResponse mirrors the opaque-token login contract.
type SessionLoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type JWTPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (r RefreshRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Refresh == "" {
		errors["refresh"] = "This field is required"
	}
	return errors
}

type RefreshResponse struct {
	Access string `json:"access"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

func (r VerifyRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Token == "" {
		errors["token"] = "This field is required"
	}
	return errors
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

func (r ChangePasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.OldPassword == "" {
		errors["old_password"] = "This field is required"
	}
	if r.NewPassword == "" {
		errors["new_password"] = "This field is required"
	} else if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["new_password"] = msg
	}
	if r.NewPasswordConfirm != r.NewPassword {
		errors["new_password_confirm"] = "Passwords do not match"
	}

	return errors
}

type ResendActivationRequest struct {
	Email string `json:"email"`
}

func (r ResendActivationRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	return errors
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

func (r ResetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	return errors
}

type ResetConfirmRequest struct {
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

func (r ResetConfirmRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.NewPassword == "" {
		errors["new_password"] = "This field is required"
	} else if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["new_password"] = msg
	}
	if r.NewPasswordConfirm != r.NewPassword {
		errors["new_password_confirm"] = "Passwords do not match"
	}

	return errors
}

type ProfileResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Description string `json:"description"`
}

type UpdateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Description string `json:"description"`
}
