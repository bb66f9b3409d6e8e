package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"focusflow/internal/middleware"
	"focusflow/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

type createSessionRequest struct {
	StartTime        *time.Time `json:"startTime"`
	PlannedDuration  int        `json:"plannedDuration"`
	PomodorosPlanned int        `json:"pomodorosPlanned"`
	Task             string     `json:"task"`
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	limit := 0
	if rawLimit := c.Query("limit"); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil {
			limit = parsed
		}
	}

	sessions, apiErr := h.sessionService.List(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	session, apiErr := h.sessionService.Get(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	session, apiErr := h.sessionService.StartFocusCycle(c.Request.Context(), userID, service.StartSessionInput{
		StartTime:        req.StartTime,
		PlannedDuration:  req.PlannedDuration,
		PomodorosPlanned: req.PomodorosPlanned,
		Task:             req.Task,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) Update(c *gin.Context) {
	var req service.UpdateSessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	session, apiErr := h.sessionService.ApplyPatch(c.Request.Context(), userID, c.Param("id"), req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Stats(c *gin.Context) {
	userID := middleware.UserID(c)
	stats, apiErr := h.sessionService.Stats(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, stats)
}
