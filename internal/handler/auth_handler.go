package handler

import (
	"net/http"

	"askroom/internal/services"
	"askroom/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Anonymous issues a participant token with a fresh identity.
func (h *AuthHandler) Anonymous(c *gin.Context) {
	res, err := h.service.SignInAnonymously(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}

// RequestMagicLink mails a one-time admin sign-in link. The response is
// the same whether or not the email is known; nothing leaks.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req httpdto.MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.service.RequestMagicLink(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "sent"}))
}

// RedeemMagicLink exchanges a link token for an admin session.
func (h *AuthHandler) RedeemMagicLink(c *gin.Context) {
	var req httpdto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	res, err := h.service.RedeemMagicLink(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}
