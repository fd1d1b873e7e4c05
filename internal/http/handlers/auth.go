package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
	"server/internal/validate"
)

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	ProfileImage string `json:"profile_image"`
	Phone        string `json:"phone"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		ProfileImage: u.ProfileImage,
		Phone:        u.Phone,
	}
}

// AuthSignup registers a new account with the user role.
func (a *App) AuthSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if msg := validate.NameError(req.Name); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if msg := validate.EmailError(req.Email); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if msg := validate.PasswordError(req.Password); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if msg := validate.PasswordConfirmError(req.Password, req.ConfirmPassword); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}

	token, user, err := a.Auth.SignUp(r.Context(), validate.SanitizeInput(req.Name), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			a.error(w, http.StatusConflict, "email_taken", "Email already registered")
			return
		}
		a.Logger.Error().Err(err).Msg("signup failed")
		a.error(w, http.StatusInternalServerError, "internal", "Authentication failed. Please try again")
		return
	}
	a.json(w, http.StatusCreated, sessionResponse{Token: token, User: toUserDTO(user)})
}

// AuthSignin exchanges credentials for a session token. Backend error
// strings never reach the response; each failure class maps to its own
// user-facing message.
func (a *App) AuthSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if msg := validate.EmailError(req.Email); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if req.Password == "" {
		a.error(w, http.StatusBadRequest, "validation", "Password is required")
		return
	}

	token, user, err := a.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			a.error(w, http.StatusUnauthorized, "unauthorized", "No account found with this email")
		case errors.Is(err, domain.ErrIncorrectPassword):
			a.error(w, http.StatusUnauthorized, "unauthorized", "Incorrect password")
		case errors.Is(err, domain.ErrAccountDisabled):
			a.error(w, http.StatusForbidden, "account_disabled", "This account has been disabled")
		default:
			a.Logger.Error().Err(err).Msg("signin failed")
			a.error(w, http.StatusInternalServerError, "internal", "Authentication failed. Please try again")
		}
		return
	}
	a.json(w, http.StatusOK, sessionResponse{Token: token, User: toUserDTO(user)})
}

// AuthSignout acknowledges sign-out. Sessions are stateless bearer tokens,
// so the server keeps nothing to revoke; the client discards its token.
func (a *App) AuthSignout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// AuthPasswordReset dispatches a reset token. Always 202 for well-formed
// requests so the endpoint cannot confirm whether an address exists.
func (a *App) AuthPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if msg := validate.EmailError(req.Email); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if err := a.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		a.Logger.Error().Err(err).Msg("password reset dispatch failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// AuthPasswordResetConfirm consumes a reset token and sets a new password.
func (a *App) AuthPasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Token == "" {
		a.error(w, http.StatusBadRequest, "validation", "Reset token is required")
		return
	}
	if msg := validate.PasswordError(req.Password); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if err := a.Auth.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			a.error(w, http.StatusBadRequest, "reset_invalid", "Reset link is invalid or has expired")
			return
		}
		a.Logger.Error().Err(err).Msg("password reset confirm failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
