package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/interfaces/http/middleware"
	"vininfo.backend/internal/interfaces/http/response"
)

type authService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.RegisterResult, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	VerifyEmail(ctx context.Context, userID uuid.UUID, input *entities.VerifyEmailInput) (*entities.User, error)
	ResendVerification(ctx context.Context, userID uuid.UUID) (string, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase  authService
	secureCookie bool
	cookieMaxAge time.Duration
}

// NewAuthHandler creates a new auth handler. secureCookie marks the session cookie Secure.
func NewAuthHandler(authUsecase authService, secureCookie bool, cookieMaxAge time.Duration) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		secureCookie: secureCookie,
		cookieMaxAge: cookieMaxAge,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	result, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.SessionToken)

	body := gin.H{
		"user":              result.User,
		"needsVerification": true,
	}
	if result.VerificationCode != "" {
		body["verificationCode"] = result.VerificationCode
	}
	response.Success(c, http.StatusCreated, body)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	result, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.SessionToken)
	response.Success(c, http.StatusOK, gin.H{"user": result.User})
}

// Logout clears the session cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.writeCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// Me returns the signed in user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	user, err := h.authUsecase.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// VerifyEmail confirms the address with the emailed code
// POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var input entities.VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	user, err := h.authUsecase.VerifyEmail(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ResendVerification emails a fresh verification code
// POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	code, err := h.authUsecase.ResendVerification(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"success": true}
	if code != "" {
		body["verificationCode"] = code
	}
	response.Success(c, http.StatusOK, body)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	h.writeCookie(c, token, int(h.cookieMaxAge.Seconds()))
}

func (h *AuthHandler) writeCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
