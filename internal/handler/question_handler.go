package handler

import (
	"net/http"

	"askroom/internal/services"
	"askroom/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuestionHandler struct {
	service *services.QuestionService
}

func NewQuestionHandler(service *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// Submit adds a question to the room.
func (h *QuestionHandler) Submit(c *gin.Context) {
	var req httpdto.SubmitQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	q, err := h.service.Submit(c.Request.Context(), c.Param("code"), req.Text, req.Author)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromQuestion(q)))
}

// List returns the room's questions in display order.
func (h *QuestionHandler) List(c *gin.Context) {
	qs, err := h.service.List(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListQuestionsResponse{
		Questions: httpdto.FromQuestionSlice(qs),
	}))
}

// Vote adds the caller's upvote; repeating it changes nothing.
func (h *QuestionHandler) Vote(c *gin.Context) {
	h.toggleVote(c, true)
}

// Unvote withdraws the caller's upvote; a no-op when none is held.
func (h *QuestionHandler) Unvote(c *gin.Context) {
	h.toggleVote(c, false)
}

func (h *QuestionHandler) toggleVote(c *gin.Context, up bool) {
	questionID, ok := questionIDParam(c)
	if !ok {
		return
	}
	principal, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	toggle := h.service.Vote
	if !up {
		toggle = h.service.Unvote
	}
	updated, err := toggle(c.Request.Context(), c.Param("code"), questionID, principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromQuestion(updated)))
}

// SetPinned pins or unpins a question. Room admin only.
func (h *QuestionHandler) SetPinned(c *gin.Context) {
	var req httpdto.SetPinnedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Pinned == nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	h.moderate(c, func(actor services.Principal, roomCode string, id uuid.UUID) error {
		return h.service.SetPinned(c.Request.Context(), actor, roomCode, id, *req.Pinned)
	})
}

// SetAnswered marks a question answered or not. Room admin only.
func (h *QuestionHandler) SetAnswered(c *gin.Context) {
	var req httpdto.SetAnsweredRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Answered == nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	h.moderate(c, func(actor services.Principal, roomCode string, id uuid.UUID) error {
		return h.service.SetAnswered(c.Request.Context(), actor, roomCode, id, *req.Answered)
	})
}

// Delete removes a question. Room admin only.
func (h *QuestionHandler) Delete(c *gin.Context) {
	h.moderate(c, func(actor services.Principal, roomCode string, id uuid.UUID) error {
		return h.service.Delete(c.Request.Context(), actor, roomCode, id)
	})
}

func (h *QuestionHandler) moderate(c *gin.Context, op func(actor services.Principal, roomCode string, id uuid.UUID) error) {
	questionID, ok := questionIDParam(c)
	if !ok {
		return
	}
	principal, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := op(principal, c.Param("code"), questionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "ok"}))
}

func questionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid question id", "INVALID_REQUEST"))
		return uuid.UUID{}, false
	}
	return id, true
}
