package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
)

type authServiceStub struct {
	registerFn func(ctx context.Context, input *entities.RegisterInput) (*entities.RegisterResult, error)
	loginFn    func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResult, error)
	meFn       func(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	verifyFn   func(ctx context.Context, userID uuid.UUID, input *entities.VerifyEmailInput) (*entities.User, error)
	resendFn   func(ctx context.Context, userID uuid.UUID) (string, error)
}

func (s authServiceStub) Register(ctx context.Context, input *entities.RegisterInput) (*entities.RegisterResult, error) {
	return s.registerFn(ctx, input)
}
func (s authServiceStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResult, error) {
	return s.loginFn(ctx, input)
}
func (s authServiceStub) Me(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return s.meFn(ctx, userID)
}
func (s authServiceStub) VerifyEmail(ctx context.Context, userID uuid.UUID, input *entities.VerifyEmailInput) (*entities.User, error) {
	return s.verifyFn(ctx, userID, input)
}
func (s authServiceStub) ResendVerification(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.resendFn(ctx, userID)
}

func TestAuthHandler_Register(t *testing.T) {
	user := &entities.User{ID: uuid.New(), Email: "a@b.cz", NotificationsEnabled: true, MarketingEnabled: true}
	var got *entities.RegisterInput
	h := NewAuthHandler(authServiceStub{
		registerFn: func(_ context.Context, input *entities.RegisterInput) (*entities.RegisterResult, error) {
			got = input
			if input.Email == "taken@b.cz" {
				return nil, domainerrors.Conflict("User already exists")
			}
			return &entities.RegisterResult{User: user, SessionToken: "session-token", VerificationCode: "123456"}, nil
		},
	}, true, 30*24*time.Hour)

	r := newTestRouter(uuid.Nil)
	r.POST("/register", h.Register)

	w := doRequest(r, http.MethodPost, "/register", `{"email":"a@b.cz","password":"password1","termsAccepted":true,"marketingEnabled":false}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"needsVerification":true`)
	assert.Contains(t, w.Body.String(), `"verificationCode":"123456"`)
	assert.Contains(t, w.Body.String(), `"marketing_enabled":true`)
	assert.NotContains(t, w.Body.String(), "password")
	require.True(t, got.MarketingEnabled.Valid)
	assert.False(t, got.MarketingEnabled.Bool)

	cookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, "token=session-token;"), cookie)
	for _, attr := range []string{"Path=/", "Max-Age=2592000", "HttpOnly", "Secure", "SameSite=Lax"} {
		assert.Contains(t, cookie, attr)
	}

	w = doRequest(r, http.MethodPost, "/register", `{"email":"taken@b.cz","password":"password1","termsAccepted":true}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"User already exists"`)
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	w = doRequest(r, http.MethodPost, "/register", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RegisterWithoutExposedCode(t *testing.T) {
	h := NewAuthHandler(authServiceStub{
		registerFn: func(context.Context, *entities.RegisterInput) (*entities.RegisterResult, error) {
			return &entities.RegisterResult{User: &entities.User{ID: uuid.New()}, SessionToken: "t"}, nil
		},
	}, false, time.Hour)

	r := newTestRouter(uuid.Nil)
	r.POST("/register", h.Register)

	w := doRequest(r, http.MethodPost, "/register", `{}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "verificationCode")
	assert.NotContains(t, w.Header().Get("Set-Cookie"), "Secure")
}

func TestAuthHandler_LoginAndLogout(t *testing.T) {
	user := &entities.User{ID: uuid.New(), Email: "a@b.cz"}
	h := NewAuthHandler(authServiceStub{
		loginFn: func(_ context.Context, input *entities.LoginInput) (*entities.AuthResult, error) {
			switch input.Password {
			case "right":
				return &entities.AuthResult{User: user, SessionToken: "jwt"}, nil
			case "throttled":
				return nil, domainerrors.TooManyRequests("Too many login attempts. Try again later.", 900)
			}
			return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials,
				"Invalid credentials", domainerrors.ErrInvalidCredentials)
		},
	}, false, 30*24*time.Hour)

	r := newTestRouter(uuid.Nil)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	w := doRequest(r, http.MethodPost, "/login", `{"email":"a@b.cz","password":"right"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"a@b.cz"`)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=jwt")

	w = doRequest(r, http.MethodPost, "/login", `{"email":"a@b.cz","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Invalid credentials"`)

	w = doRequest(r, http.MethodPost, "/login", `{"email":"a@b.cz","password":"throttled"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"retryAfter":900`)

	w = doRequest(r, http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "token=;")
	assert.Contains(t, cookie, "Max-Age=0")
}

func TestAuthHandler_MeVerifyResend(t *testing.T) {
	userID := uuid.New()
	h := NewAuthHandler(authServiceStub{
		meFn: func(_ context.Context, id uuid.UUID) (*entities.User, error) {
			require.Equal(t, userID, id)
			return &entities.User{ID: id, Email: "a@b.cz"}, nil
		},
		verifyFn: func(_ context.Context, id uuid.UUID, input *entities.VerifyEmailInput) (*entities.User, error) {
			if input.Code != "123456" {
				return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeBadRequest,
					"Neplatný ověřovací kód", domainerrors.ErrInvalidCode)
			}
			return &entities.User{ID: id, Email: "a@b.cz"}, nil
		},
		resendFn: func(context.Context, uuid.UUID) (string, error) {
			return "", domainerrors.TooManyRequests("Počkejte 42 sekund před dalším odesláním.", 42)
		},
	}, false, time.Hour)

	r := newTestRouter(userID)
	r.GET("/me", h.Me)
	r.POST("/verify-email", h.VerifyEmail)
	r.POST("/resend-verification", h.ResendVerification)

	w := doRequest(r, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":{`)

	w = doRequest(r, http.MethodPost, "/verify-email", `{"code":"123456"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/verify-email", `{"code":"000000"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Neplatný ověřovací kód")

	w = doRequest(r, http.MethodPost, "/resend-verification", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"retryAfter":42`)
}

func TestAuthHandler_ResendSuccess(t *testing.T) {
	h := NewAuthHandler(authServiceStub{
		resendFn: func(context.Context, uuid.UUID) (string, error) { return "654321", nil },
	}, false, time.Hour)

	r := newTestRouter(uuid.New())
	r.POST("/resend-verification", h.ResendVerification)

	w := doRequest(r, http.MethodPost, "/resend-verification", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"verificationCode":"654321"}`, w.Body.String())
}

func TestAuthHandler_RequiresUser(t *testing.T) {
	h := NewAuthHandler(authServiceStub{}, false, time.Hour)
	r := newTestRouter(uuid.Nil)
	r.GET("/me", h.Me)
	r.POST("/verify-email", h.VerifyEmail)
	r.POST("/resend-verification", h.ResendVerification)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodPost, "/verify-email", `{}`).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodPost, "/resend-verification", "").Code)
}
