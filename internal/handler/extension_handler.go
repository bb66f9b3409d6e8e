package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusflow/internal/middleware"
	"focusflow/internal/service"
)

// ExtensionHandler serves the endpoints the browser extension (or the agent
// binary) uses in place of the web client: token minting and the pull-based
// sync surface.
type ExtensionHandler struct {
	authService      *service.AuthService
	blocklistService *service.BlocklistService
	sessionService   *service.SessionService
}

func NewExtensionHandler(
	authService *service.AuthService,
	blocklistService *service.BlocklistService,
	sessionService *service.SessionService,
) *ExtensionHandler {
	return &ExtensionHandler{
		authService:      authService,
		blocklistService: blocklistService,
		sessionService:   sessionService,
	}
}

// IssueToken mints a long-lived bearer token for an already-authenticated
// user.
func (h *ExtensionHandler) IssueToken(c *gin.Context) {
	userID := middleware.UserID(c)
	token, apiErr := h.authService.IssueExtensionToken(userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *ExtensionHandler) BlockedSites(c *gin.Context) {
	userID := middleware.UserID(c)
	sites, apiErr := h.blocklistService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, sites)
}

// TimerStatus is the sync protocol endpoint: {activeSession, timerSettings,
// serverTime}.
func (h *ExtensionHandler) TimerStatus(c *gin.Context) {
	userID := middleware.UserID(c)
	status, apiErr := h.sessionService.TimerStatus(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, status)
}
