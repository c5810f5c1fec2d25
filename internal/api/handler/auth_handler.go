package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/screengrabber/account-api/internal/api/metrics"
	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	resetURL    string
}

// NewAuthHandler creates an AuthHandler. resetURL is the reset page echoed
// back with a diagnostic reset token; it may be empty.
func NewAuthHandler(authService ports.AuthService, resetURL string) *AuthHandler {
	return &AuthHandler{authService: authService, resetURL: resetURL}
}

// Register creates a password account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	observeAuth("register", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Token: res.Token, User: toUserResponse(res.User)})
}

// Login authenticates a password account and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	observeAuth("login", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: res.Token, User: toUserResponse(res.User)})
}

// GoogleLogin signs in with an identity asserted by Google, creating the
// account on first use.
//
// @Summary      Google sign-in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      googleLoginRequest  true  "Google profile"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/google [post]
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	var req googleLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.FederatedLogin(c.Request().Context(), ports.FederatedLoginInput{
		Email:       req.Email,
		Name:        req.Name,
		Picture:     req.Picture,
		FederatedID: req.GoogleID,
	})
	observeAuth("federated_login", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: res.Token, User: toUserResponse(res.User)})
}

// Me returns the account behind the bearer token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(sess.User))
}

// Logout revokes the presented bearer token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	err = h.authService.Logout(c.Request().Context(), sess.Claims)
	observeAuth("logout", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// ForgotPassword starts password recovery. The reply is identical whether or
// not the email is registered.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  forgotPasswordResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email)
	observeAuth("forgot_password", err)
	if err != nil {
		return err
	}

	resp := forgotPasswordResponse{Message: res.Message}
	if res.Token != "" {
		resp.DebugToken = res.Token
		resp.ResetURL = domain.ResetLink(h.resetURL, res.Token)
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword redeems a reset token.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword)
	observeAuth("reset_password", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset successfully"})
}

func observeAuth(operation string, err error) {
	metrics.AuthAttemptsTotal.WithLabelValues(operation, authResult(err)).Inc()
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrUserExists):
		return "user_exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrFederatedAccount):
		return "federated_account"
	case errors.Is(err, domain.ErrResetTokenExpired):
		return "token_expired"
	case errors.Is(err, domain.ErrResetTokenInvalid), errors.Is(err, domain.ErrTokenInvalid):
		return "token_invalid"
	default:
		return "error"
	}
}
