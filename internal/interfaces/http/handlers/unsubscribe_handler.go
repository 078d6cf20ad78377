package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"vininfo.backend/internal/infrastructure/email"
	"vininfo.backend/internal/interfaces/http/response"
	"vininfo.backend/internal/usecases"
	"vininfo.backend/pkg/jwt"
	"vininfo.backend/pkg/logger"
)

type unsubscribeService interface {
	Unsubscribe(ctx context.Context, token string) (jwt.Preference, error)
}

type pageRenderer interface {
	Page(p email.Page) (string, error)
}

var preferenceLabels = map[jwt.Preference]string{
	jwt.PreferenceNotifications: "notifikačních emailů",
	jwt.PreferenceMarketing:     "marketingových emailů",
}

// UnsubscribeHandler serves the landing page behind the email unsubscribe links
type UnsubscribeHandler struct {
	unsubscribeUsecase unsubscribeService
	pages              pageRenderer
}

// NewUnsubscribeHandler creates a new unsubscribe handler
func NewUnsubscribeHandler(unsubscribeUsecase unsubscribeService, pages pageRenderer) *UnsubscribeHandler {
	return &UnsubscribeHandler{unsubscribeUsecase: unsubscribeUsecase, pages: pages}
}

// Unsubscribe GET /api/email/unsubscribe?token=
func (h *UnsubscribeHandler) Unsubscribe(c *gin.Context) {
	pref, err := h.unsubscribeUsecase.Unsubscribe(c.Request.Context(), c.Query("token"))
	switch {
	case err == nil:
		h.render(c, http.StatusOK, email.Page{
			Title: "Odběr zrušen",
			Message: fmt.Sprintf("Byli jste úspěšně odhlášeni z odběru %s. Nastavení můžete kdykoliv změnit v klientské zóně.",
				preferenceLabels[pref]),
			Success: true,
		})
	case errors.Is(err, usecases.ErrMissingToken):
		h.render(c, http.StatusBadRequest, email.Page{Title: "Chybí token", Message: "Neplatný odkaz pro odhlášení z odběru."})
	case errors.Is(err, jwt.ErrInvalidPreference):
		h.render(c, http.StatusBadRequest, email.Page{Title: "Neplatný token", Message: "Neplatný typ odběru."})
	case errors.Is(err, jwt.ErrUnauthorized):
		h.render(c, http.StatusBadRequest, email.Page{Title: "Neplatný token", Message: "Odkaz pro odhlášení vypršel nebo je neplatný."})
	default:
		logger.Error(c.Request.Context(), "Unsubscribe failed", zap.Error(err))
		h.render(c, http.StatusInternalServerError, email.Page{Title: "Chyba", Message: "Došlo k neočekávané chybě. Zkuste to prosím znovu později."})
	}
}

func (h *UnsubscribeHandler) render(c *gin.Context, status int, page email.Page) {
	html, err := h.pages.Page(page)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to render unsubscribe page", zap.Error(err))
		c.String(http.StatusInternalServerError, page.Title)
		return
	}
	response.HTML(c, status, html)
}
