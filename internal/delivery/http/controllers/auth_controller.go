package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"
)

// SignUpRequest is the request body for POST /auth/signup
type SignUpRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
}

// Validate implements Validator. Format rules are enforced by the service.
func (s SignUpRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Username) == "" {
		errs = append(errs, "username is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login. Login accepts a username or an email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Login) == "" {
		errs = append(errs, "login is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /auth/login
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// SignUpResponse is the response body for POST /auth/signup
type SignUpResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// SignUp godoc
// @Summary Sign up a new user
// @Description Create an inactive account in the Participant group and email an activation link. Password is stored hashed.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} helpers.APIResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.SignUp(r.Context(), &domain.SignUpInput{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, SignUpResponse{
		User:    user,
		Message: "Please check your email to activate your account.",
	})
}

// Login godoc
// @Summary Log in
// @Description Authenticate with username or email and password. Returns a JWT and the user.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data contains token, token_type and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: inactive_account"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}

// Activate godoc
// @Summary Activate an account
// @Description Follow the emailed activation link. A token works once; every failure reads the same.
// @Tags auth
// @Produce json
// @Param userID path string true "User ID (UUID)"
// @Param token path string true "Activation token"
// @Success 200 {object} helpers.APIResponse "data contains the activated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/activate/{userID}/{token} [get]
func (c *AuthController) Activate(w http.ResponseWriter, r *http.Request) {
	user, err := c.Service.Activate(r.Context(), r.PathValue("userID"), r.PathValue("token"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// PasswordResetRequest is the request body for POST /auth/password-reset
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (p PasswordResetRequest) Validate() []string {
	if strings.TrimSpace(p.Email) == "" {
		return []string{"email is required"}
	}
	return nil
}

// SetPasswordRequest is the request body for POST /auth/password-reset/{userID}/{token}
type SetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// Validate implements Validator.
func (s SetPasswordRequest) Validate() []string {
	if s.NewPassword == "" {
		return []string{"new_password is required"}
	}
	return nil
}

// ChangePasswordRequest is the request body for POST /users/me/password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate implements Validator.
func (c ChangePasswordRequest) Validate() []string {
	var errs []string
	if c.OldPassword == "" {
		errs = append(errs, "old_password is required")
	}
	if c.NewPassword == "" {
		errs = append(errs, "new_password is required")
	}
	return errs
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

const passwordResetSentMessage = "If an active account uses this address, a password reset link is on its way."

// RequestPasswordReset godoc
// @Summary Request a password reset
// @Description Email a reset link to an active account. The answer is the same whether or not the address is known.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body PasswordResetRequest true "Account email"
// @Success 202 {object} helpers.APIResponse "data contains a message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/password-reset [post]
func (c *AuthController) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusAccepted, MessageResponse{Message: passwordResetSentMessage})
}

// ResetPassword godoc
// @Summary Set a new password from a reset link
// @Description A link works once and dies when the password changes; every failure reads the same.
// @Tags auth
// @Accept json
// @Produce json
// @Param userID path string true "User ID (UUID)"
// @Param token path string true "Password reset token"
// @Param body body SetPasswordRequest true "New password"
// @Success 200 {object} helpers.APIResponse "data contains a message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/password-reset/{userID}/{token} [post]
func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req SetPasswordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.ResetPassword(r.Context(), r.PathValue("userID"), r.PathValue("token"), req.NewPassword); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: "Your password has been reset. You can now log in."})
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Description Requires the current password. Outstanding reset links stop working.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} helpers.APIResponse "data contains a message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/password [post]
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := c.Service.ChangePassword(r.Context(), caller.UserID, req.OldPassword, req.NewPassword); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: "Your password has been changed."})
}
