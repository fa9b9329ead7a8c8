// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/profrate/internal/app/auth"
	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/app/services"
	"github.com/yigit/profrate/internal/middleware"
	"github.com/yigit/profrate/internal/pkg/apperrors"
)

// SessionTokenHeader returns the bearer token issued at login
const SessionTokenHeader = "X-Session-Token"

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	sessions    *auth.SessionManager
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, sessions *auth.SessionManager, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce plain
// @Param request body dto.RegisterRequest true "Account"
// @Success 200 {string} string "registration successful: welcome, <username>"
// @Failure 400 {string} string "Already logged in or invalid request"
// @Failure 409 {string} string "Username exists"
// @Router /register/ [post]
func (c *AuthController) Register(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	if identity.LoggedIn() {
		middleware.HandleAPIError(ctx, apperrors.ErrLoggedIn)
		return
	}

	var req dto.RegisterRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid registration request payload")
		middleware.HandleAPIError(ctx, err)
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.String(http.StatusOK, "registration successful: welcome, "+user.Username)
}

// Login handles user login
// @Summary Log in
// @Description Starts a cookie session and returns an equivalent bearer token in the X-Session-Token header.
// @Tags auth
// @Accept json
// @Produce plain
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {string} string "login successful: welcome, <username>"
// @Failure 401 {string} string "Invalid credentials or inactive account"
// @Router /login/ [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	user, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	token, err := c.sessions.Establish(ctx.Writer, ctx.Request, user.Username)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("username", user.Username).Msg("User logged in")
	ctx.Header(SessionTokenHeader, token.Token)
	ctx.String(http.StatusOK, "login successful: welcome, "+user.Username)
}

// Logout ends the caller's session
// @Summary Log out
// @Tags auth
// @Produce plain
// @Success 200 {string} string "successfully logged out"
// @Failure 401 {string} string "Login required"
// @Router /logout/ [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)

	if err := c.sessions.Destroy(ctx.Writer, ctx.Request, identity); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("username", identity.Username).Msg("User logged out")
	ctx.String(http.StatusOK, "successfully logged out")
}
