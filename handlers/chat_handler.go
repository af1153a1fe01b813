package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retana1885/Canave.ia/internal/session"
	"github.com/retana1885/Canave.ia/services"
	"github.com/retana1885/Canave.ia/web"
)

type Handler struct {
	store *session.Store

	// reply is swappable so tests can stub the LLM turn.
	reply func(context.Context, []session.Message) ([]session.Message, error)
}

func NewHandler(store *session.Store, chat *services.ChatService) *Handler {
	return &Handler{store: store, reply: chat.Reply}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.handleIndex)

	apiGroup := router.Group("/api")
	apiGroup.POST("/session", h.handleCreateSession)
	apiGroup.DELETE("/session/:id", h.handleEndSession)
	apiGroup.GET("/session/:id/messages", h.handleHistory)
	apiGroup.POST("/chat", h.handleChat)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (h *Handler) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.Index)
}

func (h *Handler) handleCreateSession(c *gin.Context) {
	id := h.store.Create()
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

func (h *Handler) handleEndSession(c *gin.Context) {
	if err := h.store.End(c.Param("id")); err != nil {
		writeError(c, http.StatusNotFound, "session not found", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleHistory(c *gin.Context) {
	history, err := h.store.History(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "session not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

func (h *Handler) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	if req.SessionID == "" || req.Message == "" {
		writeError(c, http.StatusBadRequest, "session_id and message are required", errMissingFields)
		return
	}

	userMsg := session.Message{Role: session.RoleUser, Content: req.Message}
	if err := h.store.Append(req.SessionID, userMsg); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(c, http.StatusNotFound, "session not found", err)
			return
		}
		writeError(c, http.StatusInternalServerError, "failed to record message", err)
		return
	}

	ctx := c.Request.Context()

	history, err := h.store.History(req.SessionID)
	if err != nil {
		writeError(c, http.StatusNotFound, "session not found", err)
		return
	}

	produced, err := h.reply(ctx, history)
	if err != nil {
		writeError(c, http.StatusBadGateway, "failed to generate reply", err)
		return
	}

	if err := h.store.Append(req.SessionID, produced...); err != nil {
		writeError(c, http.StatusInternalServerError, "failed to record reply", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":    lastAssistantContent(produced),
		"messages": produced,
	})
}

var errMissingFields = errors.New("session_id and message are required")

func lastAssistantContent(msgs []session.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == session.RoleAssistant {
			return msgs[i].Content
		}
	}
	return ""
}

func writeError(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
